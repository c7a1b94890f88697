package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for service metrics
const MeterName = "admission-service"

// MetricOpts describes a metric instrument
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps a monotonic int64 counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter instrument
func NewCounter(opts MetricOpts) (*Counter, error) {
	meter := otel.Meter(MeterName)
	counter, err := meter.Int64Counter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram wraps a float64 histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram instrument
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	meter := otel.Meter(MeterName)
	histogram, err := meter.Float64Histogram(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Record records a histogram observation
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}
