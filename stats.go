package adapter

import "github.com/imarval/mele-sap-adapter/outcome"

// Stats is a snapshot of the adapter's aggregate processing statistics.
// RFC connection statistics live on the Invoker.
type Stats struct {
	// EventsProcessed is the total number of events run through ProcessEvent,
	// including rejected ones.
	EventsProcessed int64 `json:"events_processed"`

	// EventsSucceeded is the number of events with a successful outcome.
	EventsSucceeded int64 `json:"events_succeeded"`

	// EventsFailed is the number of events with a failed outcome.
	EventsFailed int64 `json:"events_failed"`

	// TotalProcessingMs is the cumulative end-to-end processing time.
	TotalProcessingMs int64 `json:"total_processing_ms"`

	// AvgProcessingMs is the running average processing time per event.
	AvgProcessingMs float64 `json:"avg_processing_ms"`
}

// Stats returns a snapshot of the aggregate processing statistics.
func (a *Adapter) Stats() Stats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.stats
}

// recordEvent folds a completed outcome into the aggregate statistics.
// Counter updates are serialized: completions may race from concurrent
// ProcessEvent calls.
func (a *Adapter) recordEvent(out *outcome.Outcome) {
	a.statsMu.Lock()

	a.stats.EventsProcessed++
	if out.Success {
		a.stats.EventsSucceeded++
	} else {
		a.stats.EventsFailed++
	}
	if out.ProcessingTimeMs != nil {
		a.stats.TotalProcessingMs += *out.ProcessingTimeMs
	}
	a.stats.AvgProcessingMs = float64(a.stats.TotalProcessingMs) / float64(a.stats.EventsProcessed)

	a.statsMu.Unlock()

	if a.metrics != nil {
		status := "completed"
		if !out.Success {
			status = "failed"
		}
		var seconds float64
		if out.ProcessingTimeMs != nil {
			seconds = float64(*out.ProcessingTimeMs) / 1000.0
		}
		a.metrics.RecordEvent(status, seconds)
	}
}
