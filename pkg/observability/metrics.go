package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Delivery outcomes recorded for each submission.
const (
	DeliveryRemote = "remote"
	DeliveryLocal  = "local"
	DeliveryFailed = "failed"
)

// SubmissionRecorder counts form submissions by kind and delivery path.
// Instruments come from the global meter, so a recorder created before
// InitTelemetry still reports once the provider is installed.
type SubmissionRecorder struct {
	total metric.Int64Counter
}

func NewSubmissionRecorder() *SubmissionRecorder {
	meter := otel.Meter(tracerName)
	total, _ := meter.Int64Counter(
		"hospintel_submissions_total",
		metric.WithDescription("Form submissions by kind and delivery path"),
		metric.WithUnit("{submission}"),
	)
	return &SubmissionRecorder{total: total}
}

func (r *SubmissionRecorder) Record(ctx context.Context, kind, delivery string) {
	if r == nil || r.total == nil {
		return
	}
	r.total.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("delivery", delivery),
	))
}
