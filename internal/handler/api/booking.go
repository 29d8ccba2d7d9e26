package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"courier-escrow/internal/domain/identity"
	reqdto "courier-escrow/internal/handler/dto/request"
	resdto "courier-escrow/internal/handler/dto/response"
	"courier-escrow/internal/handler/middleware"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds   commands.BookingCommands
	escrow commands.EscrowCommands
	q      queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, escrow commands.EscrowCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, escrow: escrow, q: q}
}

// @Summary Create booking
// @Description Price a listing, obtain a payment authorization and store the booking as pending
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Create booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		abort(c, err)
		return
	}
	result, err := h.cmds.Create(c.Request.Context(), cmd, actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.Header("Location", "/api/bookings/"+result.BookingID.String())
	c.JSON(http.StatusCreated, resdto.FromCreateResult(result))
}

// @Summary Accept booking
// @Description Provider accepts a pending booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /bookings/{id}/accept [post]
func (h *BookingHandler) Accept(c *gin.Context) {
	h.transition(c, h.cmds.Accept)
}

// @Summary Start booking
// @Description Provider starts an accepted booking whose payment is authorized
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /bookings/{id}/start [post]
func (h *BookingHandler) Start(c *gin.Context) {
	h.transition(c, h.cmds.Start)
}

// @Summary Complete booking
// @Description Provider completes a booking; capture of the held funds is requested
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.cmds.Complete)
}

// @Summary Cancel booking
// @Description Cancel a booking; held or captured funds are refunded
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancel request"
// @Success 200 {object} resdto.TransitionResponse
// @Failure 400 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req reqdto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortBind(c, err)
		return
	}
	result, err := h.cmds.Cancel(c.Request.Context(), id, req.ToCommand(), actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTransitionResult(result))
}

// @Summary Capture payment
// @Description Request capture of held funds on a completed booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 202 {object} resdto.TransitionResponse
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /bookings/{id}/capture [post]
func (h *BookingHandler) Capture(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := h.escrow.Capture(c.Request.Context(), id, actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resdto.FromTransitionResult(result))
}

// @Summary Refund payment
// @Description Request a full or partial refund; omit amount for the remaining balance
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RefundRequest false "Refund request"
// @Success 202 {object} resdto.TransitionResponse
// @Failure 400 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /bookings/{id}/refunds [post]
func (h *BookingHandler) Refund(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req reqdto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortBind(c, err)
		return
	}
	result, err := h.escrow.Refund(c.Request.Context(), id, req.Amount, actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resdto.FromTransitionResult(result))
}

// @Summary Get booking
// @Description Get a booking visible to the caller
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List bookings
// @Description List the caller's bookings newest first with keyset pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param role query string false "consumer or provider"
// @Param status query string false "Booking status"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} map[string]any
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	req := queries.ListBookingsRequest{Role: c.Query("role"), Status: c.Query("status")}
	items, next, err := h.q.List(c.Request.Context(), req, actor, cursorParam(c), limitParam(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingList(items, next))
}

// @Summary Booking audit trail
// @Description List applied transitions of a booking in order
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} resdto.BookingEventResponse
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /bookings/{id}/events [get]
func (h *BookingHandler) Events(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	events, err := h.q.Events(c.Request.Context(), id, actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": resdto.FromBookingEvents(events)})
}

type transitionFunc func(ctx context.Context, id uuid.UUID, actor identity.Actor) (*commands.TransitionResult, error)

func (h *BookingHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), id, actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTransitionResult(result))
}

func requireActor(c *gin.Context) (identity.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abort(c, errUnauthorized)
	}
	return actor, ok
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	return pathID(c, "id")
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		abort(c, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func limitParam(c *gin.Context) int {
	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	return limit
}

func cursorParam(c *gin.Context) *queries.Cursor {
	if after := c.Query("after"); after != "" {
		return &queries.Cursor{After: after}
	}
	return nil
}
