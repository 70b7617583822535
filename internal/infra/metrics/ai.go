package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsTotal,
		aiCallsLatencyMs,
		aiTokensIn,
		aiTokensOut,
		aiTokensTotal,
		aiInFlight,
	)
}

var (
	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "Completion calls per provider/model by outcome (ok, empty, model_not_found, auth_error, rate_limited, unknown).",
		},
		[]string{"provider", "model", "outcome"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000, 64000},
		},
		[]string{"provider", "model", "success"},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Sum of total tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ai_calls_in_flight",
			Help: "Completion calls currently waiting for the provider.",
		},
	)
)

// ObserveCompletion records one finished completion call.
func ObserveCompletion(provider, model, outcome string, latency time.Duration, tokensIn, tokensOut, tokensTotal int) {
	p, m := norm(provider), norm(model)
	aiCallsTotal.WithLabelValues(p, m, norm(outcome)).Inc()
	success := "false"
	if outcome == "ok" || outcome == "empty" {
		success = "true"
	}
	aiCallsLatencyMs.WithLabelValues(p, m, success).Observe(float64(latency.Milliseconds()))
	if tokensTotal > 0 {
		aiTokensIn.WithLabelValues(p, m).Add(float64(tokensIn))
		aiTokensOut.WithLabelValues(p, m).Add(float64(tokensOut))
		aiTokensTotal.WithLabelValues(p, m).Add(float64(tokensTotal))
	}
}

func IncAIInFlight() { aiInFlight.Inc() }
func DecAIInFlight() { aiInFlight.Dec() }
