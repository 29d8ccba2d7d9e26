package queue

import (
	"encoding/json"
	"fmt"

	"courier-escrow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeAuthorizationExpiry = "escrow:authorization_expiry"
	TypeRatingRecompute     = "rating:recompute"
	TypePaymentRetry        = "payment:retry"
)

const (
	QueueEscrow  = "escrow"
	QueueDefault = "default"
)

type authorizationExpiryPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
}

type ratingRecomputePayload struct {
	ReviewedID uuid.UUID `json:"reviewed_id"`
}

func NewAuthorizationExpiryTask(bookingID uuid.UUID) (*asynq.Task, error) {
	b, err := json.Marshal(authorizationExpiryPayload{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAuthorizationExpiry, b), nil
}

func NewRatingRecomputeTask(reviewedID uuid.UUID) (*asynq.Task, error) {
	b, err := json.Marshal(ratingRecomputePayload{ReviewedID: reviewedID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRatingRecompute, b), nil
}

func NewPaymentRetryTask(retry shared.PaymentRetry) (*asynq.Task, error) {
	b, err := json.Marshal(retry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentRetry, b), nil
}

// expiryTaskID makes a second schedule for the same booking a no-op.
func expiryTaskID(bookingID uuid.UUID) string {
	return "auth-expiry:" + bookingID.String()
}

func paymentRetryTaskID(retry shared.PaymentRetry) string {
	if retry.RefundID != uuid.Nil {
		return fmt.Sprintf("payment-retry:%s:%s:%s", retry.BookingID, retry.Action, retry.RefundID)
	}
	return fmt.Sprintf("payment-retry:%s:%s", retry.BookingID, retry.Action)
}
