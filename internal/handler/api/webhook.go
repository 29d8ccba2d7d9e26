package api

import (
	"io"
	"net/http"

	resdto "courier-escrow/internal/handler/dto/response"
	"courier-escrow/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeader     = "Stripe-Signature"
	maxWebhookBodyBytes = 64 << 10
)

type WebhookHandler struct {
	processor commands.WebhookProcessor
}

func NewWebhookHandler(processor commands.WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// @Summary Payment gateway webhook
// @Description Apply a signed payment event. Duplicates and irrelevant events are acknowledged.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Gateway signature"
// @Success 200 {object} resdto.WebhookResponse
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /webhooks/payments [post]
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		abortBind(c, err)
		return
	}
	outcome, err := h.processor.HandlePaymentEvent(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.WebhookResponse{Received: true, Outcome: string(outcome)})
}
