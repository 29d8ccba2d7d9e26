package booking

import (
	"math"
	"strings"
	"unicode/utf8"

	"courier-escrow/internal/domain/pricing"
)

const MaxInstructionsLength = 500

type Location struct {
	lat     float64
	lng     float64
	address string
}

func NewLocation(lat, lng float64, address string) (Location, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Location{}, ErrInvalidLocation
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, ErrInvalidLocation
	}
	return Location{lat: lat, lng: lng, address: address}, nil
}

func (l Location) Lat() float64    { return l.lat }
func (l Location) Lng() float64    { return l.lng }
func (l Location) Address() string { return l.address }

func (l Location) Point() pricing.Point {
	return pricing.Point{Lat: l.lat, Lng: l.lng}
}

// Money is an amount in the smallest currency unit.
type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{cents: cents}, nil
}

// MoneyFromCents trusts its input; use it for values already validated by storage.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

func (m Money) Cents() int64 { return m.cents }

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

func (m Money) IsZero() bool { return m.cents == 0 }

type Instructions struct {
	text string
}

func NewInstructions(s string) (Instructions, error) {
	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) > MaxInstructionsLength {
		return Instructions{}, ErrInstructionsTooLong
	}
	return Instructions{text: t}, nil
}

func (i Instructions) String() string { return i.text }

type Price struct {
	Base     Money
	Distance Money
	Duration Money
	Total    Money
}

func PriceFromQuote(q pricing.Quote) (Price, error) {
	if q.TotalCents < 0 || q.BaseCents < 0 || q.DistanceCents < 0 || q.DurationCents < 0 {
		return Price{}, ErrNegativePrice
	}
	return Price{
		Base:     MoneyFromCents(q.BaseCents),
		Distance: MoneyFromCents(q.DistanceCents),
		Duration: MoneyFromCents(q.DurationCents),
		Total:    MoneyFromCents(q.TotalCents),
	}, nil
}
