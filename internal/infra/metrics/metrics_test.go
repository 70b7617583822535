//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCompletion(t *testing.T) {
	ObserveCompletion("OpenRouter", "Deepseek/Deepseek-Chat", "rate_limited", 120*time.Millisecond, 0, 0, 0)
	got := testutil.ToFloat64(aiCallsTotal.WithLabelValues("openrouter", "deepseek/deepseek-chat", "rate_limited"))
	if got != 1 {
		t.Fatalf("expected 1 rate_limited call, got %v", got)
	}

	ObserveCompletion("openrouter", "m-tokens", "ok", time.Second, 3, 2, 5)
	if v := testutil.ToFloat64(aiTokensTotal.WithLabelValues("openrouter", "m-tokens")); v != 5 {
		t.Errorf("expected 5 total tokens, got %v", v)
	}
}

func TestSessionCounters(t *testing.T) {
	before := testutil.ToFloat64(sessionResetsTotal.WithLabelValues("clear"))
	IncSessionReset(" Clear ")
	if after := testutil.ToFloat64(sessionResetsTotal.WithLabelValues("clear")); after != before+1 {
		t.Errorf("expected reset counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}

func TestSetBuildInfo(t *testing.T) {
	SetBuildInfo("dev", "abc123")
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("dev", "abc123")); v != 1 {
		t.Errorf("expected build_info gauge to be 1, got %v", v)
	}
}
