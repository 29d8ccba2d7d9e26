package pricing

import (
	"math"

	"courier-escrow/internal/pkg/errs"
)

const (
	earthRadiusKm = 6371.0088
	// distance is billed per started unit of this many meters
	distanceUnitMeters = 100
	unitsPerKm         = 1000 / distanceUnitMeters
)

var ErrInvalidRateCard = errs.Validation("rate card values cannot be negative")

type RateCard struct {
	BaseCents        int64
	PerKmCents       int64
	PerMinuteCents   int64
	EstimatedMinutes int
}

type Point struct {
	Lat float64
	Lng float64
}

type Trip struct {
	DistanceKm      float64
	DurationMinutes int
}

type Quote struct {
	BaseCents       int64
	DistanceCents   int64
	DurationCents   int64
	TotalCents      int64
	DistanceKm      float64
	DurationMinutes int
}

type Calculator interface {
	Quote(card RateCard, trip Trip) (Quote, error)
}

type DefaultCalculator struct{}

func NewDefaultCalculator() *DefaultCalculator {
	return &DefaultCalculator{}
}

// NewTrip builds the trip for a booking. Without a pickup point only the duration is billed.
func NewTrip(pickup *Point, dropoff Point, minutes int) Trip {
	trip := Trip{DurationMinutes: max(minutes, 0)}
	if pickup != nil {
		trip.DistanceKm = DistanceKm(*pickup, dropoff)
	}
	return trip
}

func (c *DefaultCalculator) Quote(card RateCard, trip Trip) (Quote, error) {
	if card.BaseCents < 0 || card.PerKmCents < 0 || card.PerMinuteCents < 0 || trip.DistanceKm < 0 || trip.DurationMinutes < 0 {
		return Quote{}, ErrInvalidRateCard
	}

	meters := int64(math.Round(trip.DistanceKm * 1000))
	units := (meters + distanceUnitMeters - 1) / distanceUnitMeters
	distance := (units*card.PerKmCents + unitsPerKm/2) / unitsPerKm
	duration := int64(trip.DurationMinutes) * card.PerMinuteCents

	return Quote{
		BaseCents:       card.BaseCents,
		DistanceCents:   distance,
		DurationCents:   duration,
		TotalCents:      card.BaseCents + distance + duration,
		DistanceKm:      trip.DistanceKm,
		DurationMinutes: trip.DurationMinutes,
	}, nil
}

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
