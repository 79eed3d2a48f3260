// Package metrics exposes Prometheus collectors for the API and implements
// the observer hooks of the factor resolver, the response cache, the activity
// service, the report aggregator and audit retention.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

const namespace = "greenstamp"

// Collectors holds every metric the server exports.
type Collectors struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	factorLookups   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	activities      *prometheus.CounterVec
	activityCO2e    *prometheus.CounterVec
	reports         prometheus.Counter
	reportCO2e      prometheus.Histogram
	auditPruned     prometheus.Counter
}

// New creates the collectors on a private registry that also carries the
// Go runtime and process collectors.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		factorLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "factor_lookups_total",
			Help:      "Emission factor resolutions by factor type and outcome (region, fallback, miss)",
		}, []string{"type", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by cache and result",
		}, []string{"cache", "result"}),
		activities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_recorded_total",
			Help:      "Activities recorded by type",
		}, []string{"type"}),
		activityCO2e: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_co2e_kg_total",
			Help:      "Calculated kg CO2e of recorded activities by type",
		}, []string{"type"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "CSRD reports generated",
		}),
		reportCO2e: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_total_emissions_kg",
			Help:      "Total emissions of generated reports",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
		}),
		auditPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_pruned_total",
			Help:      "Audit events deleted by the retention worker",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests, c.requestDuration,
		c.factorLookups, c.cacheLookups,
		c.activities, c.activityCO2e,
		c.reports, c.reportCO2e,
		c.auditPruned,
	)
	return c
}

// Registry returns the registry the collectors are registered on.
func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveFactorLookup implements factors.LookupObserver.
func (c *Collectors) ObserveFactorLookup(t carbon.FactorType, outcome string) {
	c.factorLookups.WithLabelValues(string(t), outcome).Inc()
}

// ObserveCacheLookup implements cache.Observer.
func (c *Collectors) ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveActivity implements activity.SubmissionObserver.
func (c *Collectors) ObserveActivity(t carbon.ActivityType, co2eKg float64) {
	c.activities.WithLabelValues(string(t)).Inc()
	c.activityCO2e.WithLabelValues(string(t)).Add(co2eKg)
}

// ObserveReport implements reporting.ReportObserver.
func (c *Collectors) ObserveReport(totalEmissions float64, _ int) {
	c.reports.Inc()
	c.reportCO2e.Observe(totalEmissions)
}

// ObserveAuditPruned implements audit.PruneObserver.
func (c *Collectors) ObserveAuditPruned(deleted int64) {
	c.auditPruned.Add(float64(deleted))
}

// Middleware records request count and latency labelled with the matched
// chi route pattern, so IDs in paths do not explode label cardinality.
func (c *Collectors) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		c.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
