package review

import "courier-escrow/internal/pkg/errs"

var (
	ErrInvalidRating  = errs.Validation("rating must be between 1 and 5")
	ErrCommentTooLong = errs.Validation("comment exceeds maximum length")
	ErrSelfReview     = errs.Validation("reviewer cannot review themselves")

	ErrNotParticipant = errs.Forbidden("only booking participants can review")

	ErrBookingNotCompleted = errs.Conflict("booking is not completed")
	ErrDuplicateReview     = errs.Conflict("review already exists for this booking")
)
