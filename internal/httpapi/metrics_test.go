package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, h http.Handler) []byte {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	return rr.Body.Bytes()
}

// TestMetricsMiddleware_UsesRoutePattern ensures requests are labeled by the
// chi route pattern and exposed under the gemmad namespace.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{})
	postGenerate(h, `{"text":"hi"}`)

	body := scrape(t, h)
	if !bytes.Contains(body, []byte("gemmad_http_requests_total")) || !bytes.Contains(body, []byte(`path="/generate"`)) {
		preview := body
		if len(preview) > 400 {
			preview = preview[:400]
		}
		t.Fatalf("expected gemmad_http_requests_total with /generate; got: %q", string(preview))
	}
}

func TestIncrementBackpressure_IncrementsCounter(t *testing.T) {
	baseline := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full"))
	IncrementBackpressure("queue_full")
	IncrementBackpressure("queue_full")
	if got := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full")); got < baseline+2 {
		t.Fatalf("expected backpressure counter >= %v, got %v", baseline+2, got)
	}

	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified"))
	IncrementBackpressure("")
	if after := testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified")); after < before+1 {
		t.Fatalf("expected unspecified reason to increment: before=%v after=%v", before, after)
	}
}

func TestItoa(t *testing.T) {
	for n, want := range map[int]string{0: "0", 200: "200", 429: "429", 504: "504"} {
		if got := itoa(n); got != want {
			t.Fatalf("itoa(%d)=%q", n, got)
		}
	}
}
