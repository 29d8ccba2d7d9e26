package booking

import "courier-escrow/internal/pkg/errs"

var (
	ErrInvalidSchedule     = errs.Validation("scheduled time must be in the future")
	ErrInvalidLocation     = errs.Validation("invalid location")
	ErrInvalidAmount       = errs.Validation("invalid amount")
	ErrNegativePrice       = errs.Validation("price cannot be negative")
	ErrInstructionsTooLong = errs.Validation("special instructions exceed maximum length")
	ErrInvalidStatus       = errs.Validation("invalid booking status")
	ErrListingUnavailable  = errs.Validation("listing is not available for booking")

	ErrForbidden = errs.Forbidden("actor is not allowed to act on this booking")

	ErrInvalidTransition         = errs.Conflict("invalid booking transition")
	ErrPaymentNotCapturable      = errs.Conflict("payment is not capturable")
	ErrPaymentNotRefundable      = errs.Conflict("payment is not refundable")
	ErrPaymentReferenceImmutable = errs.Conflict("payment reference is already set")
)

var ErrInvalidPaymentReference = errs.Validation("payment reference is required")
