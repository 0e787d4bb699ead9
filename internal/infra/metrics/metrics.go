// Package metrics provides Prometheus metrics for Vigil: counters,
// gauges, and histograms for availability rounds, probes, and peers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Availability ───────────────────────────────────────────────────────────

// Rounds counts completed measurement rounds by aggregate result.
var Rounds = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vigil",
	Name:      "availability_rounds_total",
	Help:      "Total completed availability measurement rounds.",
}, []string{"result"})

// ProbeFailures counts individual failed peer probes.
var ProbeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vigil",
	Name:      "probe_failures_total",
	Help:      "Total failed peer liveness probes.",
})

// Score tracks the current sliding-window availability score.
var Score = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vigil",
	Name:      "availability_score",
	Help:      "Fraction of the retention window flagged as failed.",
})

// Escalations counts alert actions fired by severity.
var Escalations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vigil",
	Name:      "escalations_total",
	Help:      "Total escalation actions fired.",
}, []string{"severity"})

// RoundDuration tracks wall-clock duration of one measurement round.
var RoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "vigil",
	Name:      "round_duration_seconds",
	Help:      "Duration of one availability round in seconds.",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
})

// ─── Peers ──────────────────────────────────────────────────────────────────

// KnownPeers tracks the current size of the peer directory.
var KnownPeers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vigil",
	Name:      "known_peers",
	Help:      "Number of peers currently in the directory.",
})
