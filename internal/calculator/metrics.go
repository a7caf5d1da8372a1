package calculator

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, created by InitMetrics.
var (
	callsCounter metric.Int64Counter
	callDuration metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge
)

var (
	metricsOnce sync.Once
	metricsErr  error
)

// InitMetrics registers the calculator's OTel instruments on the global
// meter. It is safe to call more than once. Instruments created before
// observability.InitMetrics installs a provider forward to it afterwards.
func InitMetrics() error {
	metricsOnce.Do(func() {
		metricsErr = initMetrics()
	})
	return metricsErr
}

func initMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	callsCounter, err = meter.Int64Counter("calculator.client.calls.total",
		metric.WithDescription("Calls to Calculate, by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return fmt.Errorf("creating calls counter: %w", err)
	}

	callDuration, err = meter.Float64Histogram("calculator.client.call.duration",
		metric.WithDescription("Round trip to the calculation service in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 10000),
	)
	if err != nil {
		return fmt.Errorf("creating call duration histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Rejected JSON API requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last successful calculation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
