package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgrelay_updates_total",
			Help: "Inbound Telegram updates by kind (command/photo/other).",
		},
		[]string{"kind"},
	)

	removalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgrelay_removals_total",
			Help: "Background removal requests by outcome.",
		},
		[]string{"outcome"},
	)

	removalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgrelay_removal_duration_seconds",
			Help:    "Latency of calls to the removal service.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"outcome"},
	)

	creditsCharged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bgrelay_credits_charged_total",
			Help: "remove.bg credits reported as charged.",
		},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bgrelay_build_info",
			Help: "A constant metric with labels for version and commit hash.",
		},
		[]string{"version", "commit"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			updatesTotal, removalsTotal, removalDuration,
			creditsCharged, buildInfo,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncUpdate(kind string) {
	updatesTotal.WithLabelValues(norm(kind)).Inc()
}

func ObserveRemoval(outcome string, elapsed time.Duration) {
	removalsTotal.WithLabelValues(norm(outcome)).Inc()
	removalDuration.WithLabelValues(norm(outcome)).Observe(elapsed.Seconds())
}

func AddCredits(n float64) {
	if n > 0 {
		creditsCharged.Add(n)
	}
}

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}
