package response

import (
	"time"

	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/queries"
)

type CreateBookingResponse struct {
	BookingID          string                 `json:"bookingId"`
	PaymentClientToken string                 `json:"paymentClientToken"`
	Booking            BookingSummaryResponse `json:"booking"`
}

type BookingSummaryResponse struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"paymentStatus"`
	PriceTotalCents    int64     `json:"priceTotalCents"`
	RefundedTotalCents int64     `json:"refundedTotalCents"`
	Currency           string    `json:"currency"`
	Version            int64     `json:"version"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type PaymentEffectResponse struct {
	Action      string `json:"action"`
	AmountCents int64  `json:"amountCents"`
	Outcome     string `json:"outcome"`
	Detail      string `json:"detail,omitempty"`
}

type TransitionResponse struct {
	Booking BookingSummaryResponse `json:"booking"`
	Payment *PaymentEffectResponse `json:"payment,omitempty"`
}

func FromCreateResult(r *commands.CreateBookingResult) *CreateBookingResponse {
	return &CreateBookingResponse{
		BookingID:          r.BookingID.String(),
		PaymentClientToken: r.PaymentClientToken,
		Booking:            fromSummary(r.Booking),
	}
}

func FromTransitionResult(r *commands.TransitionResult) *TransitionResponse {
	resp := &TransitionResponse{Booking: fromSummary(r.Booking)}
	if p := r.Payment; p != nil {
		resp.Payment = &PaymentEffectResponse{
			Action:      string(p.Action),
			AmountCents: p.AmountCents,
			Outcome:     string(p.Outcome),
			Detail:      p.Detail,
		}
	}
	return resp
}

func fromSummary(s commands.BookingSummary) BookingSummaryResponse {
	return BookingSummaryResponse{
		ID:                 s.ID.String(),
		Status:             s.Status.String(),
		PaymentStatus:      s.PaymentStatus.String(),
		PriceTotalCents:    s.PriceTotalCents,
		RefundedTotalCents: s.RefundedTotalCents,
		Currency:           s.Currency,
		Version:            s.Version,
		UpdatedAt:          s.UpdatedAt,
	}
}

type LocationResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type PriceResponse struct {
	BaseCents     int64 `json:"baseCents"`
	DistanceCents int64 `json:"distanceCents"`
	DurationCents int64 `json:"durationCents"`
	TotalCents    int64 `json:"totalCents"`
}

type BookingResponse struct {
	ID                  string            `json:"id"`
	ConsumerID          string            `json:"consumerId"`
	ProviderID          string            `json:"providerId"`
	ListingID           string            `json:"listingId"`
	Status              string            `json:"status"`
	PaymentStatus       string            `json:"paymentStatus"`
	ScheduledAt         time.Time         `json:"scheduledAt"`
	PickupLocation      *LocationResponse `json:"pickupLocation,omitempty"`
	DropoffLocation     LocationResponse  `json:"dropoffLocation"`
	SpecialInstructions string            `json:"specialInstructions,omitempty"`
	Price               PriceResponse     `json:"price"`
	RefundedTotalCents  int64             `json:"refundedTotalCents"`
	Currency            string            `json:"currency"`
	PaymentReference    string            `json:"paymentReference,omitempty"`
	Version             int64             `json:"version"`
	CancelledBy         string            `json:"cancelledBy,omitempty"`
	CancelReason        string            `json:"cancelReason,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	resp := &BookingResponse{
		ID:                  v.ID.String(),
		ConsumerID:          v.ConsumerID.String(),
		ProviderID:          v.ProviderID.String(),
		ListingID:           v.ListingID.String(),
		Status:              v.Status,
		PaymentStatus:       v.PaymentStatus,
		ScheduledAt:         v.ScheduledAt,
		DropoffLocation:     LocationResponse(v.Dropoff),
		SpecialInstructions: v.SpecialInstructions,
		Price: PriceResponse{
			BaseCents:     v.PriceBaseCents,
			DistanceCents: v.PriceDistanceCents,
			DurationCents: v.PriceDurationCents,
			TotalCents:    v.PriceTotalCents,
		},
		RefundedTotalCents: v.RefundedTotalCents,
		Currency:           v.Currency,
		PaymentReference:   v.PaymentReference,
		Version:            v.Version,
		CancelReason:       v.CancelReason,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
	if v.Pickup != nil {
		p := LocationResponse(*v.Pickup)
		resp.PickupLocation = &p
	}
	if v.CancelledBy != nil {
		resp.CancelledBy = v.CancelledBy.String()
	}
	return resp
}

type BookingListItemResponse struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listingId"`
	ConsumerID      string    `json:"consumerId"`
	ProviderID      string    `json:"providerId"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	PriceTotalCents int64     `json:"priceTotalCents"`
	CreatedAt       time.Time `json:"createdAt"`
}

type BookingListResponse struct {
	Bookings   []*BookingListItemResponse `json:"bookings"`
	NextCursor string                     `json:"nextCursor,omitempty"`
}

func FromBookingList(items []*queries.BookingListItem, next *queries.Cursor) *BookingListResponse {
	res := &BookingListResponse{Bookings: make([]*BookingListItemResponse, len(items))}
	for i, it := range items {
		res.Bookings[i] = &BookingListItemResponse{
			ID:              it.ID.String(),
			ListingID:       it.ListingID.String(),
			ConsumerID:      it.ConsumerID.String(),
			ProviderID:      it.ProviderID.String(),
			Status:          it.Status,
			PaymentStatus:   it.PaymentStatus,
			ScheduledAt:     it.ScheduledAt,
			PriceTotalCents: it.PriceTotalCents,
			CreatedAt:       it.CreatedAt,
		}
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}

type BookingEventResponse struct {
	ID                string    `json:"id"`
	FromStatus        string    `json:"fromStatus,omitempty"`
	ToStatus          string    `json:"toStatus"`
	FromPaymentStatus string    `json:"fromPaymentStatus,omitempty"`
	ToPaymentStatus   string    `json:"toPaymentStatus"`
	ActorID           string    `json:"actorId,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	OccurredAt        time.Time `json:"occurredAt"`
}

func FromBookingEvents(events []*queries.BookingEventView) []*BookingEventResponse {
	res := make([]*BookingEventResponse, len(events))
	for i, e := range events {
		res[i] = &BookingEventResponse{
			ID:                e.ID,
			FromStatus:        e.FromStatus,
			ToStatus:          e.ToStatus,
			FromPaymentStatus: e.FromPaymentStatus,
			ToPaymentStatus:   e.ToPaymentStatus,
			Reason:            e.Reason,
			OccurredAt:        e.OccurredAt,
		}
		if e.ActorID != nil {
			res[i].ActorID = e.ActorID.String()
		}
	}
	return res
}
