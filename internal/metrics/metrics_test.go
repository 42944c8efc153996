package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ReviewCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordReviewAppended()
	c.RecordReviewAppended()
	c.RecordReviewRejected("invalid_content")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.reviewsAppended))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.reviewRejects.WithLabelValues("invalid_content")))
}

func TestCollector_MiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/stores/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/7", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	got := testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "/stores/{id}", "404"))
	assert.Equal(t, float64(1), got)
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordReviewAppended()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "viniloteca_reviews_appended_total 1"))
}
