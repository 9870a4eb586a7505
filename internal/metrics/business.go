package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	drawsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "funhub_draws_started_total", Help: "Spins started, by repeat mode"},
		[]string{"repeat"},
	)
	drawsSettled = promauto.NewCounter(
		counterOpts("funhub_draws_settled_total", "Spins that settled on a winner"),
	)
	drawsRejected = promauto.NewCounter(
		counterOpts("funhub_draws_rejected_total", "Draw requests ignored because a spin was running or the pool was empty"),
	)
	partitions = promauto.NewCounter(
		counterOpts("funhub_partitions_total", "Completed auto grouping runs"),
	)
	groupsCreated = promauto.NewCounter(
		counterOpts("funhub_groups_created_total", "Groups produced by auto grouping"),
	)
	namingFallbacks = promauto.NewCounter(
		counterOpts("funhub_naming_fallbacks_total", "Name generation failures answered with placeholder names"),
	)
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "funhub_active_sessions",
		Help: "Sessions currently held in memory",
	})
)

// IncDrawStarted counts a started spin.
func IncDrawStarted(allowRepeat bool) {
	label := "no"
	if allowRepeat {
		label = "yes"
	}
	drawsStarted.WithLabelValues(label).Inc()
}

// IncDrawSettled counts a spin that produced a winner.
func IncDrawSettled() {
	drawsSettled.Inc()
}

// IncDrawRejected counts an ignored draw request.
func IncDrawRejected() {
	drawsRejected.Inc()
}

// ObservePartition counts a grouping run and the groups it produced.
func ObservePartition(groups int) {
	partitions.Inc()
	if groups > 0 {
		groupsCreated.Add(float64(groups))
	}
}

// IncNamingFallback counts a name generation that fell back to placeholders.
func IncNamingFallback() {
	namingFallbacks.Inc()
}

// NamingFallbacks exposes the fallback counter.
func NamingFallbacks() prometheus.Counter {
	return namingFallbacks
}

// SetActiveSessions records the number of live sessions.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

func counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Name: name,
		Help: help,
	}
}
