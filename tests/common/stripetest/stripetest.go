//go:build unit || e2e

package stripetest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Sign builds a Stripe-Signature header for payload.
func Sign(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.", ts)
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// PaymentIntentEvent renders a webhook payload whose object is a payment intent
// that carries no booking tag.
func PaymentIntentEvent(eventID, eventType, intentID string, amount int64) []byte {
	return BookingIntentEvent(eventID, eventType, intentID, "", amount)
}

// BookingIntentEvent is PaymentIntentEvent for an intent tagged with bookingID.
// A succeeded intent reports amount as received.
func BookingIntentEvent(eventID, eventType, intentID, bookingID string, amount int64) []byte {
	intent := map[string]any{
		"id":     intentID,
		"object": "payment_intent",
		"amount": amount,
		"status": "requires_capture",
	}
	if eventType == "payment_intent.succeeded" {
		intent["status"] = "succeeded"
		intent["amount_received"] = amount
	}
	if bookingID != "" {
		intent["metadata"] = map[string]string{"booking_id": bookingID}
	}
	return event(eventID, eventType, intent)
}

// ChargeRefundedEvent renders a charge.refunded payload.
func ChargeRefundedEvent(eventID, intentID string, amountRefunded int64) []byte {
	return event(eventID, "charge.refunded", map[string]any{
		"id":              "ch_" + intentID,
		"object":          "charge",
		"payment_intent":  intentID,
		"amount_refunded": amountRefunded,
		"refunded":        true,
	})
}

// PartialChargeRefundedEvent is a charge.refunded payload for a charge that
// captured only part of its authorized amount.
func PartialChargeRefundedEvent(eventID, intentID string, authorized, captured, amountRefunded int64) []byte {
	return event(eventID, "charge.refunded", map[string]any{
		"id":              "ch_" + intentID,
		"object":          "charge",
		"payment_intent":  intentID,
		"amount":          authorized,
		"amount_captured": captured,
		"amount_refunded": amountRefunded,
		"refunded":        amountRefunded == captured,
	})
}

func event(eventID, eventType string, object map[string]any) []byte {
	return mustJSON(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-10-16",
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Call is one request received by the stub server.
type Call struct {
	Method         string
	Path           string
	IdempotencyKey string
	Form           map[string]string
}

// Server is a minimal stand-in for the Stripe API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	failures map[string]int
	seq      int
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{failures: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// FailNext rejects the next n requests whose path ends with suffix. A 4xx keeps
// the client from retrying on its own.
func (s *Server) FailNext(suffix string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[suffix] = n
}

// Reset forgets recorded calls and pending failures. Ids keep increasing.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.failures = map[string]int{}
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := map[string]string{}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			form[k] = v[0]
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:         r.Method,
		Path:           r.URL.Path,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Form:           form,
	})
	s.seq++
	seq := s.seq
	for suffix, n := range s.failures {
		if n > 0 && strings.HasSuffix(r.URL.Path, suffix) {
			s.failures[suffix] = n - 1
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"type": "invalid_request_error", "message": "stub failure"},
			})
			return
		}
	}
	s.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/v1/payment_intents":
		id := fmt.Sprintf("pi_stub_%d", seq)
		writeJSON(w, http.StatusOK, map[string]any{
			"id":             id,
			"object":         "payment_intent",
			"amount":         atoi(form["amount"]),
			"currency":       form["currency"],
			"capture_method": form["capture_method"],
			"client_secret":  id + "_secret_stub",
			"status":         "requires_payment_method",
		})
	case len(parts) == 4 && parts[1] == "payment_intents" && parts[3] == "capture":
		writeJSON(w, http.StatusOK, map[string]any{"id": parts[2], "object": "payment_intent", "status": "succeeded"})
	case len(parts) == 4 && parts[1] == "payment_intents" && parts[3] == "cancel":
		writeJSON(w, http.StatusOK, map[string]any{"id": parts[2], "object": "payment_intent", "status": "canceled"})
	case r.URL.Path == "/v1/refunds":
		writeJSON(w, http.StatusOK, map[string]any{
			"id":             fmt.Sprintf("re_stub_%d", seq),
			"object":         "refund",
			"amount":         atoi(form["amount"]),
			"payment_intent": form["payment_intent"],
			"status":         "pending",
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"type": "invalid_request_error", "message": "unknown path " + r.URL.Path},
		})
	}
}

func atoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
