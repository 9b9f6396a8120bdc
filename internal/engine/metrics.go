package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("github.com/chris-regnier/jinspect/internal/engine")
	meter  = otel.Meter("github.com/chris-regnier/jinspect/internal/engine")
)

var (
	runDuration   metric.Float64Histogram
	runTotal      metric.Int64Counter
	findingsTotal metric.Int64Counter
	cacheHits     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		runDuration, err = meter.Float64Histogram(
			"jinspect_inspection_duration_seconds",
			metric.WithDescription("Duration of one inspection run over one unit"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		runTotal, err = meter.Int64Counter(
			"jinspect_inspection_runs_total",
			metric.WithDescription("Inspection runs, by inspection and outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		findingsTotal, err = meter.Int64Counter(
			"jinspect_findings_total",
			metric.WithDescription("Findings reported, by inspection"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		cacheHits, err = meter.Int64Counter(
			"jinspect_cache_hits_total",
			metric.WithDescription("Inspection runs answered from the cache"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRun(ctx context.Context, inspection string, d time.Duration, findings int, cached bool, err error) {
	if initMetrics() != nil {
		return
	}
	name := attribute.String("inspection", inspection)
	if cached {
		cacheHits.Add(ctx, 1, metric.WithAttributes(name))
	} else {
		runDuration.Record(ctx, d.Seconds(), metric.WithAttributes(name))
	}
	runTotal.Add(ctx, 1, metric.WithAttributes(name, attribute.Bool("success", err == nil)))
	if findings > 0 {
		findingsTotal.Add(ctx, int64(findings), metric.WithAttributes(name))
	}
}
