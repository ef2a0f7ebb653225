package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"gemmad/internal/manager"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", manager.ErrModelUnavailable(manager.LoadLoading), http.StatusServiceUnavailable},
		{"dependency", manager.ErrDependencyUnavailable("llama support not built"), http.StatusServiceUnavailable},
		{"invalid", manager.ErrInvalidRequest("image inputs are not supported"), http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"wrapped deadline", fmt.Errorf("chat completion: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"http error", mockHTTPError{msg: "x", code: http.StatusConflict}, http.StatusConflict},
		{"other", fmt.Errorf("cuda oom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got, _ := errorStatus(c.err); got != c.want {
			t.Fatalf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestGenerateTooBusyMaps429AndCounts(t *testing.T) {
	m, release := saturatedManager(t)
	defer release()

	before := testutil.ToFloat64(backpressureTotal.WithLabelValues(manager.ReasonQueueFull))
	w := postGenerate(NewMux(m), `{"text":"hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", w.Code, w.Body.String())
	}
	after := testutil.ToFloat64(backpressureTotal.WithLabelValues(manager.ReasonQueueFull))
	if after < before+1 {
		t.Fatalf("backpressure not counted: before=%v after=%v", before, after)
	}
}

func TestGenerateTimeoutMaps504(t *testing.T) {
	defer SetGenerateTimeoutSeconds(0)
	SetGenerateTimeoutSeconds(1)
	generateTimeout = 20 * time.Millisecond

	w := postGenerate(NewMux(&blockService{}), `{"text":"x"}`)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 on timeout, got %d", w.Code)
	}
}
