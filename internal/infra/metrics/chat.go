package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		turnsTotal,
		summariesTotal,
		summariesDeferred,
		aiTokensIn,
		aiTokensOut,
		aiCallsLatencyMs,
	)
}

var (
	turnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Count of answered (safe, generated) turns.",
		},
	)

	summariesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_summaries_total",
			Help: "Count of successfully regenerated rolling summaries.",
		},
	)

	summariesDeferred = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_summaries_deferred_total",
			Help: "Count of summarization triggers deferred due to provider failure.",
		},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per model.",
		},
		[]string{"model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per model.",
		},
		[]string{"model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"model", "success"},
	)
)

func TurnCompleted()    { turnsTotal.Inc() }
func SummaryGenerated() { summariesTotal.Inc() }
func SummaryDeferred()  { summariesDeferred.Inc() }

func ObserveChatCall(model string, tokensIn, tokensOut int, elapsed time.Duration, success bool) {
	m := norm(model)
	aiTokensIn.WithLabelValues(m).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(m).Add(float64(tokensOut))
	aiCallsLatencyMs.WithLabelValues(m, strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
