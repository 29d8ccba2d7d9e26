//go:build unit

package booking_test

import (
	"testing"

	"courier-escrow/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	allStatuses = []booking.Status{
		booking.StatusPending, booking.StatusAccepted, booking.StatusInProgress, booking.StatusCompleted, booking.StatusCancelled,
	}
	allPayments = []booking.PaymentStatus{
		booking.PaymentPending, booking.PaymentAuthorized, booking.PaymentPaid,
		booking.PaymentFailed, booking.PaymentRefunded, booking.PaymentPartiallyRefunded,
	}
)

func TestStatusEdges(t *testing.T) {
	for _, s := range allStatuses {
		assert.False(t, s.CanTransitionTo(booking.StatusPending), "nothing re-enters pending: %s", s)
		if s.IsTerminal() {
			for _, next := range allStatuses {
				assert.False(t, s.CanTransitionTo(next), "%s is terminal", s)
			}
		} else {
			assert.True(t, s.CanTransitionTo(booking.StatusCancelled), "%s can be cancelled", s)
		}
	}
	assert.True(t, booking.StatusPending.CanTransitionTo(booking.StatusAccepted))
	assert.True(t, booking.StatusAccepted.CanTransitionTo(booking.StatusInProgress))
	assert.True(t, booking.StatusInProgress.CanTransitionTo(booking.StatusCompleted))
	assert.False(t, booking.StatusPending.CanTransitionTo(booking.StatusCompleted))
}

func TestPaymentEdges(t *testing.T) {
	for _, p := range allPayments {
		if p == booking.PaymentFailed || p == booking.PaymentRefunded {
			for _, next := range allPayments {
				assert.False(t, p.CanTransitionTo(next), "%s never changes", p)
			}
		}
		if p == booking.PaymentPaid || p == booking.PaymentPartiallyRefunded {
			assert.False(t, p.CanTransitionTo(booking.PaymentPending))
			assert.False(t, p.CanTransitionTo(booking.PaymentAuthorized))
		}
	}
	assert.True(t, booking.PaymentAuthorized.CanTransitionTo(booking.PaymentPartiallyRefunded), "partly released hold")
}

func TestCompatible(t *testing.T) {
	allowed := map[booking.Status][]booking.PaymentStatus{
		booking.StatusPending:    {booking.PaymentPending, booking.PaymentAuthorized},
		booking.StatusAccepted:   {booking.PaymentPending, booking.PaymentAuthorized},
		booking.StatusInProgress: {booking.PaymentAuthorized},
		booking.StatusCompleted:  {booking.PaymentAuthorized, booking.PaymentPaid, booking.PaymentPartiallyRefunded, booking.PaymentRefunded},
		booking.StatusCancelled: {
			booking.PaymentFailed, booking.PaymentAuthorized, booking.PaymentPaid, booking.PaymentPartiallyRefunded, booking.PaymentRefunded,
		},
	}
	for _, s := range allStatuses {
		for _, p := range allPayments {
			assert.Equal(t, contains(allowed[s], p), booking.Compatible(s, p), "%s/%s", s, p)
		}
	}
}

func TestParse(t *testing.T) {
	s, err := booking.ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusInProgress, s)

	_, err = booking.ParseStatus("done")
	require.ErrorIs(t, err, booking.ErrInvalidStatus)

	p, err := booking.ParsePaymentStatus("partially_refunded")
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPartiallyRefunded, p)
}

func contains(list []booking.PaymentStatus, p booking.PaymentStatus) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
