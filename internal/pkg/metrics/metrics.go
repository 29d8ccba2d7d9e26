package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	webhooks     *prometheus.CounterVec
	gatewayCalls *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Name:      "booking_transitions_total",
			Help:      "Applied booking transitions by resulting status and payment status.",
		}, []string{"status", "payment_status"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Name:      "webhook_events_total",
			Help:      "Gateway webhook deliveries by outcome.",
		}, []string{"outcome"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Name:      "gateway_calls_total",
			Help:      "Payment gateway calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "escrow",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		r.transitions,
		r.webhooks,
		r.gatewayCalls,
		r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Transition(status, paymentStatus string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(status, paymentStatus).Inc()
}

func (r *Recorder) Webhook(outcome string) {
	if r == nil {
		return
	}
	r.webhooks.WithLabelValues(outcome).Inc()
}

func (r *Recorder) GatewayCall(op string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.gatewayCalls.WithLabelValues(op, outcome).Inc()
}

func (r *Recorder) ObserveHTTP(method, route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
