package rfc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/imarval/mele-sap-adapter/outcome"
)

// commitBAPI durably finalizes a prior write call in SAP.
const commitBAPI = "BAPI_TRANSACTION_COMMIT"

// Stats is a snapshot of the connection's call statistics.
type Stats struct {
	// CallsExecuted is the total number of BAPI calls issued.
	CallsExecuted int64 `json:"calls_executed"`

	// CallErrors is the number of calls that failed at the transport level.
	CallErrors int64 `json:"call_errors"`

	// TotalLatencyMs is the cumulative call latency.
	TotalLatencyMs int64 `json:"total_latency_ms"`

	// AvgLatencyMs is the running average call latency.
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Invoker executes BAPI calls through the shared RFC session.
//
// RFC sessions do not support concurrent calls, so invocations are
// serialized with a mutex. Statistics are guarded separately: a snapshot
// never waits on an in-flight call.
type Invoker struct {
	caller Caller
	logger *slog.Logger

	callMu sync.Mutex // serializes calls over the single RFC session

	statsMu sync.Mutex
	stats   Stats
}

// NewInvoker creates an Invoker over the given transport.
func NewInvoker(caller Caller, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		caller: caller,
		logger: logger,
	}
}

// Invoke executes a single BAPI call and records its latency in the
// connection statistics. Transport errors are recorded and returned
// unchanged: classification belongs to the result normalizer.
func (inv *Invoker) Invoke(ctx context.Context, name string, parameters map[string]any) (map[string]any, error) {
	if inv.caller == nil {
		return nil, fmt.Errorf("rfc: no caller configured")
	}

	inv.callMu.Lock()
	start := time.Now()
	response, err := inv.caller.Call(ctx, name, parameters)
	latency := time.Since(start).Milliseconds()
	inv.callMu.Unlock()

	inv.record(latency, err != nil)

	if err != nil {
		inv.logger.ErrorContext(ctx, "BAPI call failed",
			"bapi", name, "latency_ms", latency, "error", err)
		return nil, fmt.Errorf("rfc: call %s: %w", name, err)
	}

	inv.logger.DebugContext(ctx, "BAPI call executed",
		"bapi", name, "latency_ms", latency)

	return response, nil
}

// InvokeWrite executes a write-style BAPI call and, when the call succeeded
// at the business level, issues the follow-up transaction commit.
//
// A commit failure is logged but does not flip the result: the primary write
// already succeeded and the commit is best-effort.
func (inv *Invoker) InvokeWrite(ctx context.Context, name string, parameters map[string]any, skipCommit bool) (map[string]any, error) {
	response, err := inv.Invoke(ctx, name, parameters)
	if err != nil {
		return nil, err
	}

	if skipCommit || outcome.ResponseFailed(response) {
		return response, nil
	}

	if _, commitErr := inv.Invoke(ctx, commitBAPI, map[string]any{"WAIT": "X"}); commitErr != nil {
		inv.logger.WarnContext(ctx, "transaction commit failed after successful write",
			"bapi", name, "error", commitErr)
	}

	return response, nil
}

// Stats returns a snapshot of the connection statistics.
func (inv *Invoker) Stats() Stats {
	inv.statsMu.Lock()
	defer inv.statsMu.Unlock()
	return inv.stats
}

func (inv *Invoker) record(latencyMs int64, failed bool) {
	inv.statsMu.Lock()
	defer inv.statsMu.Unlock()

	inv.stats.CallsExecuted++
	if failed {
		inv.stats.CallErrors++
	}
	inv.stats.TotalLatencyMs += latencyMs
	inv.stats.AvgLatencyMs = float64(inv.stats.TotalLatencyMs) / float64(inv.stats.CallsExecuted)
}
