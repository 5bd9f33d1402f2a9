package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for the adapter, backed by any go-utils
// MetricFactory.
type Metrics struct {
	EventsProcessedTotal gu.Counter
	ProcessingLatency    gu.Histogram
	BAPICallsTotal       gu.Counter
	BAPICallLatency      gu.Histogram
	QueueDepth           gu.Gauge
	DLQSize              gu.Gauge
}

// NewMetrics creates adapter metric instruments using the supplied factory.
// Pass metrics.NewMetricsCollector() for standalone usage.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		EventsProcessedTotal: factory.Counter("sap_adapter_events_processed_total"),
		ProcessingLatency:    factory.Histogram("sap_adapter_processing_latency_seconds"),
		BAPICallsTotal:       factory.Counter("sap_adapter_bapi_calls_total"),
		BAPICallLatency:      factory.Histogram("sap_adapter_bapi_call_latency_seconds"),
		QueueDepth:           factory.Gauge("sap_adapter_queue_depth"),
		DLQSize:              factory.Gauge("sap_adapter_dlq_size"),
	}
}

// RecordEvent records a processed event with the given result status and
// end-to-end processing latency.
func (m *Metrics) RecordEvent(status string, latencySeconds float64) {
	m.EventsProcessedTotal.WithLabels(map[string]string{"status": status}).Inc()
	m.ProcessingLatency.Observe(latencySeconds)
}

// RecordCall records one BAPI call by function module name.
func (m *Metrics) RecordCall(bapi string, latencySeconds float64) {
	m.BAPICallsTotal.WithLabels(map[string]string{"bapi": bapi}).Inc()
	m.BAPICallLatency.Observe(latencySeconds)
}
