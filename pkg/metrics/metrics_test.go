package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-api/pkg/activity"
	"github.com/greenstamp/greenstamp-api/pkg/audit"
	"github.com/greenstamp/greenstamp-api/pkg/cache"
	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/factors"
	"github.com/greenstamp/greenstamp-api/pkg/reporting"
)

var (
	_ factors.LookupObserver      = (*Collectors)(nil)
	_ cache.Observer              = (*Collectors)(nil)
	_ activity.SubmissionObserver = (*Collectors)(nil)
	_ reporting.ReportObserver    = (*Collectors)(nil)
	_ audit.PruneObserver         = (*Collectors)(nil)
)

func TestObservers(t *testing.T) {
	c := New()

	c.ObserveFactorLookup(carbon.FactorTypeEnergy, factors.LookupRegion)
	c.ObserveFactorLookup(carbon.FactorTypeEnergy, factors.LookupFallback)
	c.ObserveFactorLookup(carbon.FactorTypeEnergy, factors.LookupFallback)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.factorLookups.WithLabelValues("energy", "region")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.factorLookups.WithLabelValues("energy", "fallback")))

	c.ObserveCacheLookup(cache.NameFactorListing, true)
	c.ObserveCacheLookup(cache.NameFactorListing, false)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues(cache.NameFactorListing, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues(cache.NameFactorListing, "miss")))

	c.ObserveActivity(carbon.ActivityTypeTransport, 15.8)
	c.ObserveActivity(carbon.ActivityTypeTransport, 4.2)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.activities.WithLabelValues("transport")))
	assert.InDelta(t, 20.0, testutil.ToFloat64(c.activityCO2e.WithLabelValues("transport")), 1e-9)

	c.ObserveReport(30, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reports))

	c.ObserveAuditPruned(4)
	c.ObserveAuditPruned(0)
	assert.Equal(t, 4.0, testutil.ToFloat64(c.auditPruned))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	c := New()
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/activities/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/activities/a", "/activities/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("/activities/{id}", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("/ok", "GET", "200")))
}

func TestHandler_Exposition(t *testing.T) {
	c := New()
	c.ObserveReport(12, 1)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, "greenstamp_reports_generated_total 1"), body)
	assert.Contains(t, body, "go_goroutines")
}
