package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_ObserveOperation(t *testing.T) {
	r := NewRecorder()

	r.ObserveOperation("add-section", "ok", 2*time.Millisecond)
	r.ObserveOperation("add-section", "ok", time.Millisecond)
	r.ObserveOperation("add-section", "VALIDATION", time.Millisecond)
	r.ObserveOperation("", "UNKNOWN_OPERATION", 0)

	body := scrape(t, r)
	assert.Contains(t, body, `navegante_dispatch_operations_total{op="add-section",status="ok"} 2`)
	assert.Contains(t, body, `navegante_dispatch_operations_total{op="add-section",status="VALIDATION"} 1`)
	assert.Contains(t, body, `navegante_dispatch_operations_total{op="unknown",status="UNKNOWN_OPERATION"} 1`)
	assert.Contains(t, body, `navegante_dispatch_operation_duration_seconds_count{op="add-section"} 3`)
}

func TestRecorder_InstrumentHandler(t *testing.T) {
	r := NewRecorder()
	h := r.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/v1/ops/list-sections", "/v1/ops/list-sections", "/missing", "/metrics"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	body := scrape(t, r)
	assert.Contains(t, body, `navegante_http_requests_total{method="POST",path="/v1/ops/list-sections",status="200"} 2`)
	assert.Contains(t, body, `navegante_http_requests_total{method="POST",path="/missing",status="404"} 1`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestCanonicalPath(t *testing.T) {
	tests := map[string]string{
		"":                          "/",
		"/":                         "/",
		"/healthz":                  "/healthz",
		"/v1/ops/add-product":       "/v1/ops/add-product",
		"/v1/ops/add-product/extra": "/v1",
		"/foo/bar":                  "/foo",
	}
	for in, want := range tests {
		assert.Equal(t, want, canonicalPath(in), in)
	}
}
