package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(safetyBlocks)
}

var safetyBlocks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "safety_interventions_total",
		Help: "Count of messages blocked by the safety classifier, per category.",
	},
	[]string{"category"},
)

func SafetyBlocked(category string) {
	safetyBlocks.WithLabelValues(norm(category)).Inc()
}
