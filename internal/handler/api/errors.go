package api

import (
	"errors"
	"log/slog"
	"net/http"

	"courier-escrow/internal/domain/booking"
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/domain/review"
	"courier-escrow/internal/handler/httperr"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/queries"
	"courier-escrow/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidID      = errs.Validation("invalid id")
	errInvalidRequest = errs.Validation("invalid request")
	errUnauthorized   = errs.Unauthorized("authentication required")
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is consulted in order; the first sentinel found in the chain wins.
var errorTable = []errorMapping{
	{commands.ErrGatewayUnavailable, http.StatusBadGateway, "GatewayUnavailable"},
	{commands.ErrWebhookRetryable, http.StatusInternalServerError, "Retryable"},
	{commands.ErrSchedulingUnavailable, http.StatusServiceUnavailable, "SchedulingUnavailable"},

	{booking.ErrInvalidSchedule, http.StatusBadRequest, "InvalidSchedule"},
	{booking.ErrInvalidLocation, http.StatusBadRequest, "InvalidLocation"},
	{booking.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
	{booking.ErrNegativePrice, http.StatusBadRequest, "InvalidAmount"},
	{booking.ErrInstructionsTooLong, http.StatusBadRequest, "InstructionsTooLong"},
	{booking.ErrListingUnavailable, http.StatusBadRequest, "ListingUnavailable"},
	{booking.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{booking.ErrInvalidTransition, http.StatusConflict, "InvalidTransition"},
	{booking.ErrPaymentNotCapturable, http.StatusConflict, "PaymentNotCapturable"},
	{booking.ErrPaymentNotRefundable, http.StatusConflict, "PaymentNotRefundable"},

	{review.ErrInvalidRating, http.StatusBadRequest, "InvalidRating"},
	{review.ErrCommentTooLong, http.StatusBadRequest, "CommentTooLong"},
	{review.ErrSelfReview, http.StatusBadRequest, "SelfReview"},
	{review.ErrNotParticipant, http.StatusForbidden, "Forbidden"},
	{review.ErrBookingNotCompleted, http.StatusConflict, "BookingNotCompleted"},
	{review.ErrDuplicateReview, http.StatusConflict, "DuplicateReview"},

	{commands.ErrBookingNotFound, http.StatusNotFound, "BookingNotFound"},
	{commands.ErrListingNotFound, http.StatusNotFound, "ListingNotFound"},
	{commands.ErrConsumerOnly, http.StatusForbidden, "Forbidden"},
	{commands.ErrConflict, http.StatusConflict, "Conflict"},

	{queries.ErrBookingNotFound, http.StatusNotFound, "BookingNotFound"},
	{queries.ErrBookingAccess, http.StatusForbidden, "Forbidden"},
	{queries.ErrInvalidFilter, http.StatusBadRequest, "InvalidFilter"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "InvalidCursor"},

	{shared.ErrInvalidSignature, http.StatusBadRequest, "InvalidSignature"},
	{shared.ErrMalformedEvent, http.StatusBadRequest, "MalformedEvent"},
	{identity.ErrInvalidRole, http.StatusUnauthorized, "Unauthorized"},

	{errInvalidID, http.StatusBadRequest, "InvalidID"},
	{errInvalidRequest, http.StatusBadRequest, "InvalidRequest"},
	{errUnauthorized, http.StatusUnauthorized, "Unauthorized"},
}

var categoryTable = []errorMapping{
	{errs.ErrValidation, http.StatusBadRequest, "Validation"},
	{errs.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{errs.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{errs.ErrNotFound, http.StatusNotFound, "NotFound"},
	{errs.ErrStateConflict, http.StatusConflict, "Conflict"},
	{errs.ErrExternal, http.StatusBadGateway, "ExternalFailure"},
	{errs.ErrIntegrity, http.StatusBadRequest, "IntegrityFailure"},
}

// mapError picks the status, code and public message for err.
func mapError(err error) (int, string, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err.Error()
		}
	}
	if cat := errs.CategoryOf(err); cat != nil {
		for _, m := range categoryTable {
			if cat == m.err {
				return m.status, m.code, m.err.Error()
			}
		}
	}
	return http.StatusInternalServerError, "Internal", "Internal error"
}

func abort(c *gin.Context, err error) {
	status, code, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "status", status, "error", err)
	}
	httperr.AbortWithCode(c, status, err, code, msg, nil)
}

func abortBind(c *gin.Context, err error) {
	httperr.AbortWithCode(c, http.StatusBadRequest, errs.WithCause(errInvalidRequest, err), "InvalidRequest", "Invalid request", err.Error())
}
