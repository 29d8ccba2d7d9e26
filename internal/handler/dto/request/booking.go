package request

import (
	"time"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/usecase/commands"

	"github.com/google/uuid"
)

type LocationRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
}

type CreateBookingRequest struct {
	ListingID           uuid.UUID        `json:"listingId" binding:"required"`
	ScheduledAt         time.Time        `json:"scheduledAt" binding:"required"`
	DropoffLocation     *LocationRequest `json:"dropoffLocation"`
	PickupLocation      *LocationRequest `json:"pickupLocation,omitempty"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
}

// CancelBookingRequest carries an optional refund amount in minor units.
type CancelBookingRequest struct {
	Reason       string `json:"reason,omitempty" binding:"max=500"`
	RefundAmount *int64 `json:"refundAmount,omitempty"`
}

type RefundRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

// ToCommand leaves value checks to the domain; only a coordinate that is
// missing altogether is rejected here.
func (r *CreateBookingRequest) ToCommand() (commands.CreateBookingRequest, error) {
	dropoff, err := r.DropoffLocation.toInput()
	if err != nil {
		return commands.CreateBookingRequest{}, err
	}
	pickup, err := r.PickupLocation.toInput()
	if err != nil {
		return commands.CreateBookingRequest{}, err
	}
	return commands.CreateBookingRequest{
		ListingID:           r.ListingID,
		ScheduledAt:         r.ScheduledAt,
		Pickup:              pickup,
		Dropoff:             dropoff,
		SpecialInstructions: r.SpecialInstructions,
	}, nil
}

func (l *LocationRequest) toInput() (*commands.LocationInput, error) {
	if l == nil {
		return nil, nil
	}
	if l.Lat == nil || l.Lng == nil {
		return nil, booking.ErrInvalidLocation
	}
	return &commands.LocationInput{Lat: *l.Lat, Lng: *l.Lng, Address: l.Address}, nil
}

func (r *CancelBookingRequest) ToCommand() commands.CancelRequest {
	return commands.CancelRequest{Reason: r.Reason, RefundAmountCents: r.RefundAmount}
}
