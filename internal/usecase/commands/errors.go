package commands

import "courier-escrow/internal/pkg/errs"

var (
	ErrBookingNotFound = errs.NotFound("booking not found")
	ErrListingNotFound = errs.NotFound("listing not found")

	ErrConsumerOnly = errs.Forbidden("only consumers can create bookings")

	// ErrConflict reports a lost check-and-set race on a booking.
	ErrConflict = errs.Conflict("booking was modified concurrently")

	ErrGatewayUnavailable = errs.External("payment gateway request failed")
	ErrWebhookRetryable   = errs.External("webhook could not be processed, retry later")

	ErrSchedulingUnavailable = errs.External("booking expiry could not be scheduled, retry later")
)
