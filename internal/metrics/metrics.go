package metrics

import (
	"context"
	"sync"

	"github.com/eventlane/admission-service/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Admission counters
	RequestsAdmitted  *telemetry.Counter
	RequestsConfirmed *telemetry.Counter
	RequestsRejected  *telemetry.Counter
	RequestsCanceled  *telemetry.Counter

	initOnce sync.Once
	initErr  error
)

// Init initializes all admission metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	RequestsAdmitted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "admission_requests_total",
		Description: "Total number of participation requests admitted",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "admission_confirmations_total",
		Description: "Total number of requests confirmed by event owners",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "admission_rejections_total",
		Description: "Total number of requests rejected, including spillover",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestsCanceled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "admission_cancellations_total",
		Description: "Total number of requests canceled by requesters",
		Unit:        "1",
	})
	return err
}

// RecordAdmission records a newly admitted request and its initial status
func RecordAdmission(ctx context.Context, eventID, status string) {
	if RequestsAdmitted == nil {
		return
	}
	RequestsAdmitted.Add(ctx, 1,
		attribute.String("event_id", eventID),
		attribute.String("status", status),
	)
}

// RecordModeration records the outcome of a batch status update
func RecordModeration(ctx context.Context, eventID string, confirmed, rejected int) {
	if RequestsConfirmed != nil && confirmed > 0 {
		RequestsConfirmed.Add(ctx, int64(confirmed), attribute.String("event_id", eventID))
	}
	if RequestsRejected != nil && rejected > 0 {
		RequestsRejected.Add(ctx, int64(rejected), attribute.String("event_id", eventID))
	}
}

// RecordCancellation records a requester-initiated cancellation
func RecordCancellation(ctx context.Context, eventID string) {
	if RequestsCanceled == nil {
		return
	}
	RequestsCanceled.Add(ctx, 1, attribute.String("event_id", eventID))
}
