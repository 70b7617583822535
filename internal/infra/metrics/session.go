package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(sessionResetsTotal, modelChangesTotal, sessionsEvictedTotal, historyLength)
}

var (
	sessionResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_session_resets_total",
			Help: "Session resets by reason (start, clear, model_change).",
		},
		[]string{"reason"},
	)

	modelChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_model_changes_total",
			Help: "Model switches by target model.",
		},
		[]string{"model"},
	)

	sessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_evicted_total",
			Help: "Idle sessions dropped by the sweeper.",
		},
	)

	historyLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_history_length",
			Help:    "Number of messages sent as context per completion call.",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		},
	)
)

func IncSessionReset(reason string) {
	sessionResetsTotal.WithLabelValues(norm(reason)).Inc()
}

func IncModelChange(model string) {
	modelChangesTotal.WithLabelValues(norm(model)).Inc()
}

func AddSessionsEvicted(n int) {
	sessionsEvictedTotal.Add(float64(n))
}

func ObserveHistoryLength(n int) {
	historyLength.Observe(float64(n))
}
