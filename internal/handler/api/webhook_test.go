//go:build unit

package api_test

import (
	"bytes"
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"courier-escrow/internal/handler/api"
	resdto "courier-escrow/internal/handler/dto/response"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase/commands"
	"courier-escrow/internal/usecase/shared"
	"courier-escrow/tests/common/httptest"
	commandsmock "courier-escrow/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestWebhookHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	setup := func(t *testing.T) (*gin.Engine, *commandsmock.MockWebhookProcessor) {
		ctrl := gomock.NewController(t)
		processor := commandsmock.NewMockWebhookProcessor(ctrl)
		router := gin.New()
		router.POST("/webhooks/payments", api.NewWebhookHandler(processor).HandlePayment)
		return router, processor
	}

	post := func(router *gin.Engine, body []byte, signature string) *nethttptest.ResponseRecorder {
		req := nethttptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set("Stripe-Signature", signature)
		}
		rec := nethttptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	t.Run("raw body and signature reach the processor", func(t *testing.T) {
		router, processor := setup(t)
		processor.EXPECT().HandlePaymentEvent(gomock.Any(), payload, "t=1,v1=abc").Return(commands.WebhookApplied, nil)

		rec := post(router, payload, "t=1,v1=abc")

		var res resdto.WebhookResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &res)
		assert.True(t, res.Received)
		assert.Equal(t, "applied", res.Outcome)
	})

	t.Run("duplicate delivery is acknowledged", func(t *testing.T) {
		router, processor := setup(t)
		processor.EXPECT().HandlePaymentEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(commands.WebhookDuplicate, nil)

		rec := post(router, payload, "t=1,v1=abc")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"outcome":"duplicate"`)
	})

	t.Run("status codes steer gateway redelivery", func(t *testing.T) {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"bad signature", shared.ErrInvalidSignature, http.StatusBadRequest, "InvalidSignature"},
			{"malformed event", shared.ErrMalformedEvent, http.StatusBadRequest, "MalformedEvent"},
			{"unknown reference", errs.WithCause(commands.ErrWebhookRetryable, errors.New("booking not found")), http.StatusInternalServerError, "Retryable"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				router, processor := setup(t)
				processor.EXPECT().HandlePaymentEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(commands.WebhookOutcome(""), tc.err)

				rec := post(router, payload, "t=1,v1=abc")
				assert.Equal(t, tc.status, rec.Code)
				assert.Equal(t, tc.code, errorCode(rec))
			})
		}
	})

	t.Run("oversized body is rejected unread", func(t *testing.T) {
		router, _ := setup(t)

		rec := post(router, bytes.Repeat([]byte("x"), 65<<10), "t=1,v1=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
