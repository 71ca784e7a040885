package hub

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer trace.Tracer = otel.Tracer("thermolink.hub")
	meter  metric.Meter = otel.Meter("thermolink.hub")
)

var (
	buildDuration   metric.Float64Histogram
	buildUnresolved metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		buildDuration, err = meter.Float64Histogram(
			"thermolink.build.duration",
			metric.WithDescription("Duration of hub build operations"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		buildUnresolved, err = meter.Int64Counter(
			"thermolink.build.unresolved",
			metric.WithDescription("Unresolved symbols reported by hub builds"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordBuild 上报一次构建的耗时与未解析数量；指标初始化失败时静默跳过。
func recordBuild(ctx context.Context, started time.Time, components, unresolved int, outcome string) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("components", components),
	)
	buildDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000, attrs)
	if unresolved > 0 {
		buildUnresolved.Add(ctx, int64(unresolved), attrs)
	}
}
