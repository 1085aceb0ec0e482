package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics groups the collectors recorded by the gateway client
type clientMetrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mailpilot",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Backend requests issued by the client, by operation and HTTP status (0 = transport failure)",
			},
			[]string{"op", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mailpilot",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Backend request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"op"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mailpilot",
				Subsystem: "api",
				Name:      "fallbacks_total",
				Help:      "Snapshot fallbacks served instead of backend reads",
				// outcome: served, exhausted
			},
			[]string{"op", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.fallbacks)
	}
	return m
}

func (m *clientMetrics) observe(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *clientMetrics) fallback(op string, err error) {
	if m == nil {
		return
	}
	outcome := "served"
	if err != nil {
		outcome = "exhausted"
	}
	m.fallbacks.WithLabelValues(op, outcome).Inc()
}
