package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gateVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_gate_verdicts_total",
		Help: "Authorization gate outcomes",
	}, []string{"verdict"})

	throttledEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_throttled_events_total",
		Help: "Events dropped by the per-user rate limit",
	})
)
