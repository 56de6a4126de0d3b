package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "notewall", Name: "push_sessions_active", Help: "Number of connected push-channel sessions."},
	)
	EventsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "notewall", Name: "push_events_delivered_total", Help: "Number of events queued for delivery, by event type."},
		[]string{"type"},
	)
	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "notewall", Name: "push_events_dropped_total", Help: "Number of events dropped for slow sessions, by event type."},
		[]string{"type"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "notewall", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "notewall", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SessionsActive)
	reg.MustRegister(EventsDelivered)
	reg.MustRegister(EventsDropped)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
