package api

import (
	"net/http"

	reqdto "courier-escrow/internal/handler/dto/request"
	resdto "courier-escrow/internal/handler/dto/response"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	cmds commands.ReviewCommands
	q    queries.ReviewQueries
}

func NewReviewHandler(cmds commands.ReviewCommands, q queries.ReviewQueries) *ReviewHandler {
	return &ReviewHandler{cmds: cmds, q: q}
}

// @Summary Create review
// @Description Review the other participant of a completed booking
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReviewRequest true "Create review request"
// @Success 201 {object} resdto.CreateReviewResponse
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req reqdto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	result, err := h.cmds.CreateReview(c.Request.Context(), req.ToCommand(), actor)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCreateReviewResult(result))
}

// @Summary List reviews about a user
// @Description List reviews received by an identity with keyset pagination
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.ReviewListResponse
// @Failure 400 {object} map[string]any
// @Router /users/{id}/reviews [get]
func (h *ReviewHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, next, err := h.q.ListByReviewed(c.Request.Context(), userID, cursorParam(c), limitParam(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReviewList(items, next))
}

// @Summary User rating
// @Description Get rating statistics of an identity
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} resdto.RatingStatsResponse
// @Failure 400 {object} map[string]any
// @Router /users/{id}/rating [get]
func (h *ReviewHandler) RatingStats(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.q.GetRatingStats(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRatingStats(stats))
}
