package rfc_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/imarval/mele-sap-adapter/rfc"
)

// fakeCaller records every call and answers from a scripted response table.
type fakeCaller struct {
	mu        sync.Mutex
	calls     []string
	params    []map[string]any
	responses map[string]map[string]any
	errs      map[string]error
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		responses: make(map[string]map[string]any),
		errs:      make(map[string]error),
	}
}

func (f *fakeCaller) Call(_ context.Context, name string, parameters map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name)
	f.params = append(f.params, parameters)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if resp, ok := f.responses[name]; ok {
		return resp, nil
	}
	return map[string]any{}, nil
}

func (f *fakeCaller) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func ctx() context.Context { return context.Background() }

func TestInvoke(t *testing.T) {
	fc := newFakeCaller()
	fc.responses["BAPI_MATERIAL_GET_DETAIL"] = map[string]any{"MATERIAL": "MAT001"}
	inv := rfc.NewInvoker(fc, nil)

	resp, err := inv.Invoke(ctx(), "BAPI_MATERIAL_GET_DETAIL", map[string]any{"MATERIAL": "MAT001"})
	if err != nil {
		t.Fatal(err)
	}
	if resp["MATERIAL"] != "MAT001" {
		t.Fatalf("unexpected response: %v", resp)
	}

	stats := inv.Stats()
	if stats.CallsExecuted != 1 || stats.CallErrors != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestInvokeTransportError(t *testing.T) {
	fc := newFakeCaller()
	fc.errs["BAPI_VENDOR_CREATE"] = errors.New("connection reset")
	inv := rfc.NewInvoker(fc, nil)

	_, err := inv.Invoke(ctx(), "BAPI_VENDOR_CREATE", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(err.Error(), "BAPI_VENDOR_CREATE") {
		t.Fatalf("expected call name in error, got %v", err)
	}

	stats := inv.Stats()
	if stats.CallsExecuted != 1 || stats.CallErrors != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestInvokeNoCaller(t *testing.T) {
	inv := rfc.NewInvoker(nil, nil)
	if _, err := inv.Invoke(ctx(), "BAPI_MATERIAL_GET_DETAIL", nil); err == nil {
		t.Fatal("expected error without a caller")
	}
}

// A clean write earns the follow-up transaction commit with WAIT=X.
func TestInvokeWriteCommits(t *testing.T) {
	fc := newFakeCaller()
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}
	inv := rfc.NewInvoker(fc, nil)

	if _, err := inv.InvokeWrite(ctx(), "BAPI_MATERIAL_SAVEDATA", map[string]any{}, false); err != nil {
		t.Fatal(err)
	}

	calls := fc.callNames()
	if len(calls) != 2 || calls[0] != "BAPI_MATERIAL_SAVEDATA" || calls[1] != "BAPI_TRANSACTION_COMMIT" {
		t.Fatalf("expected write then commit, got %v", calls)
	}
	if fc.params[1]["WAIT"] != "X" {
		t.Fatalf("expected WAIT=X on commit, got %v", fc.params[1])
	}
}

// A write whose response carries an E message is not committed.
func TestInvokeWriteSkipsCommitOnFailedResponse(t *testing.T) {
	fc := newFakeCaller()
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{
		"RETURN": []any{map[string]any{"TYPE": "E", "ID": "M3", "NUMBER": "051", "MESSAGE": "exists"}},
	}
	inv := rfc.NewInvoker(fc, nil)

	resp, err := inv.InvokeWrite(ctx(), "BAPI_MATERIAL_SAVEDATA", map[string]any{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp == nil {
		t.Fatal("failed responses are still returned for normalization")
	}

	calls := fc.callNames()
	if len(calls) != 1 {
		t.Fatalf("expected no commit after business failure, got %v", calls)
	}
}

func TestInvokeWriteSkipCommitFlag(t *testing.T) {
	fc := newFakeCaller()
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}
	inv := rfc.NewInvoker(fc, nil)

	if _, err := inv.InvokeWrite(ctx(), "BAPI_MATERIAL_SAVEDATA", map[string]any{}, true); err != nil {
		t.Fatal(err)
	}
	if calls := fc.callNames(); len(calls) != 1 {
		t.Fatalf("expected commit suppressed, got %v", calls)
	}
}

// The commit is best-effort: a failing commit after a successful write does
// not fail the write.
func TestInvokeWriteCommitFailureIgnored(t *testing.T) {
	fc := newFakeCaller()
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}, "MATERIAL": "MAT001"}
	fc.errs["BAPI_TRANSACTION_COMMIT"] = errors.New("session dropped")
	inv := rfc.NewInvoker(fc, nil)

	resp, err := inv.InvokeWrite(ctx(), "BAPI_MATERIAL_SAVEDATA", map[string]any{}, false)
	if err != nil {
		t.Fatalf("commit failure must not fail the write, got %v", err)
	}
	if resp["MATERIAL"] != "MAT001" {
		t.Fatalf("expected write response, got %v", resp)
	}
}

func TestStatsAverage(t *testing.T) {
	fc := newFakeCaller()
	inv := rfc.NewInvoker(fc, nil)

	for range 4 {
		if _, err := inv.Invoke(ctx(), "BAPI_MATERIAL_GET_DETAIL", nil); err != nil {
			t.Fatal(err)
		}
	}

	stats := inv.Stats()
	if stats.CallsExecuted != 4 {
		t.Fatalf("expected 4 calls, got %d", stats.CallsExecuted)
	}
	if stats.AvgLatencyMs < 0 {
		t.Fatalf("average latency must be non-negative, got %f", stats.AvgLatencyMs)
	}
}

func TestCallerFunc(t *testing.T) {
	var called bool
	f := rfc.CallerFunc(func(_ context.Context, name string, _ map[string]any) (map[string]any, error) {
		called = true
		return map[string]any{"NAME": name}, nil
	})

	resp, err := f.Call(ctx(), "BAPI_X", nil)
	if err != nil || !called || resp["NAME"] != "BAPI_X" {
		t.Fatalf("adapter did not delegate: %v %v", resp, err)
	}
}
