package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/imarval/mele-sap-adapter"

// Tracer provides OpenTelemetry tracing for event processing.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new adapter tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartEventSpan starts a span covering the processing of one event.
func (t *Tracer) StartEventSpan(ctx context.Context, eventID, eventType, entityType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "sap_adapter.process_event",
		trace.WithAttributes(
			attribute.String("sap_adapter.event_id", eventID),
			attribute.String("sap_adapter.event_type", eventType),
			attribute.String("sap_adapter.entity_type", entityType),
		),
	)
}

// EndEventSpan ends an event span with the processing result.
func (t *Tracer) EndEventSpan(span trace.Span, operation string, success bool, processingMs int64, err string) {
	span.SetAttributes(
		attribute.String("sap_adapter.operation", operation),
		attribute.Bool("sap_adapter.success", success),
		attribute.Int64("sap_adapter.processing_ms", processingMs),
	)
	if err != "" {
		span.SetAttributes(attribute.String("sap_adapter.error", err))
	}
	span.End()
}
