package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ResolveRequestsTotal    metric.Int64Counter
	ResolveAttemptsTotal    metric.Int64Counter
	ResolveFailuresTotal    metric.Int64Counter
	CacheHitsTotal          metric.Int64Counter
	CacheMissesTotal        metric.Int64Counter
	GenerateRequestsTotal   metric.Int64Counter
	GenerateDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the process-wide metrics instruments, creating them on first
// use from the globally configured MeterProvider (a no-op provider when
// tracing was never initialized, e.g. in tests).
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("LocalExplorer")
		m := &AppMetrics{}

		var err error
		m.ResolveRequestsTotal, err = meter.Int64Counter(
			"resolve_requests_total",
			metric.WithDescription("Total number of place resolution requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create resolve_requests_total: %v", err)
		}

		m.ResolveAttemptsTotal, err = meter.Int64Counter(
			"resolve_attempts_total",
			metric.WithDescription("Total number of (endpoint, radius) resolution attempts"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create resolve_attempts_total: %v", err)
		}

		m.ResolveFailuresTotal, err = meter.Int64Counter(
			"resolve_failures_total",
			metric.WithDescription("Total number of resolutions that exhausted every attempt"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create resolve_failures_total: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"cache_hits_total",
			metric.WithDescription("Total number of query cache hits"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_hits_total: %v", err)
		}

		m.CacheMissesTotal, err = meter.Int64Counter(
			"cache_misses_total",
			metric.WithDescription("Total number of query cache misses"),
			metric.WithUnit("{miss}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_misses_total: %v", err)
		}

		m.GenerateRequestsTotal, err = meter.Int64Counter(
			"generate_requests_total",
			metric.WithDescription("Total number of itinerary generation runs"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generate_requests_total: %v", err)
		}

		m.GenerateDurationSeconds, err = meter.Float64Histogram(
			"generate_duration_seconds",
			metric.WithDescription("Duration of itinerary generation runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generate_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
