package adapter_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	adapter "github.com/imarval/mele-sap-adapter"
	"github.com/imarval/mele-sap-adapter/dlq"
	"github.com/imarval/mele-sap-adapter/event"
	"github.com/imarval/mele-sap-adapter/outcome"
	"github.com/imarval/mele-sap-adapter/store/memory"
)

func ctx() context.Context { return context.Background() }

// fakeCaller answers BAPI calls from a scripted response table and records
// every call it served.
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

func (f *fakeCaller) paramsFor(name string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.calls {
		if c == name {
			return f.params[i]
		}
	}
	return nil
}

func errReturn(id, number, text string) map[string]any {
	return map[string]any{
		"RETURN": []any{map[string]any{"TYPE": "E", "ID": id, "NUMBER": number, "MESSAGE": text}},
	}
}

func setup(t *testing.T, opts ...adapter.Option) (*adapter.Adapter, *fakeCaller, *memory.Store) {
	t.Helper()
	fc := newFakeCaller()
	s := memory.New()
	a, err := adapter.New(append([]adapter.Option{
		adapter.WithCaller(fc),
		adapter.WithStore(s),
	}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return a, fc, s
}

func rawEvent(eventType, entityType, eventID string, data map[string]any) map[string]any {
	raw := map[string]any{
		"eventType":  eventType,
		"entityType": entityType,
		"eventId":    eventID,
		"timestamp":  "2024-03-15T10:30:00Z",
	}
	if data != nil {
		raw["payload"] = map[string]any{"data": data}
	}
	return raw
}

func TestNewRequiresCaller(t *testing.T) {
	_, err := adapter.New()
	if !errors.Is(err, adapter.ErrNoCaller) {
		t.Fatalf("expected ErrNoCaller, got %v", err)
	}
}

func TestProcessEventCreate(t *testing.T) {
	a, fc, s := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{
		"RETURN":   []any{map[string]any{"TYPE": "S", "ID": "M3", "NUMBER": "800", "MESSAGE": "Material created"}},
		"MATERIAL": "MAT001",
	}

	raw := rawEvent("Create", "Product", "evt-1001", map[string]any{
		"id":       "MAT001",
		"name":     "Widget",
		"baseUnit": "EA",
	})

	out := a.ProcessEvent(ctx(), raw)

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if out.Operation != outcome.OpCreate {
		t.Fatalf("expected CREATE, got %s", out.Operation)
	}
	if out.Metadata["objectKey"] != "MAT001" {
		t.Fatalf("expected objectKey MAT001, got %v", out.Metadata["objectKey"])
	}
	if out.ProcessingTimeMs == nil {
		t.Fatal("expected processing time to be set")
	}

	// Write then commit.
	calls := fc.callNames()
	if len(calls) != 2 || calls[0] != "BAPI_MATERIAL_SAVEDATA" || calls[1] != "BAPI_TRANSACTION_COMMIT" {
		t.Fatalf("expected write then commit, got %v", calls)
	}

	// The parameter bag carries the payload key.
	bag := fc.paramsFor("BAPI_MATERIAL_SAVEDATA")
	head, _ := bag["HEADDATA"].(map[string]any)
	if head["MATERIAL"] != "MAT001" {
		t.Fatalf("unexpected HEADDATA: %v", head)
	}

	// The event is persisted as completed.
	evt, err := s.GetEvent(ctx(), "evt-1001")
	if err != nil {
		t.Fatal(err)
	}
	if evt.Status != event.StatusCompleted {
		t.Fatalf("expected completed, got %s", evt.Status)
	}

	stats := a.Stats()
	if stats.EventsProcessed != 1 || stats.EventsSucceeded != 1 || stats.EventsFailed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestProcessEventBAPIError(t *testing.T) {
	a, fc, s := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = errReturn("M3", "051", "Material already exists")

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1002", map[string]any{"id": "MAT001"}))

	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Error != "SAP BAPI Error: M3051: Material already exists" {
		t.Fatalf("unexpected error text: %q", out.Error)
	}
	if !out.Retryable {
		t.Fatal("BAPI failures are retryable by default")
	}

	// No commit after a failed write.
	if calls := fc.callNames(); len(calls) != 1 {
		t.Fatalf("expected no commit, got %v", calls)
	}

	// Persisted as failed with the cause in the error log.
	evt, err := s.GetEvent(ctx(), "evt-1002")
	if err != nil {
		t.Fatal(err)
	}
	if evt.Status != event.StatusFailed || len(evt.Errors) != 1 {
		t.Fatalf("unexpected event state: %s %v", evt.Status, evt.Errors)
	}

	// Retryable failure with budget left: not dead-lettered yet.
	n, _ := s.CountDLQ(ctx())
	if n != 0 {
		t.Fatalf("expected empty DLQ, got %d", n)
	}
}

// A Sync event whose read fails (here at the transport level) falls back to
// the create path.
func TestProcessEventSyncCreates(t *testing.T) {
	a, fc, _ := setup(t)
	fc.errs["BAPI_MATERIAL_GET_DETAIL"] = errors.New("connection reset")
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}, "MATERIAL": "MAT002"}

	out := a.ProcessEvent(ctx(), rawEvent("Sync", "Product", "evt-1003", map[string]any{"id": "MAT002", "name": "Bolt"}))

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if out.Operation != outcome.OpSync {
		t.Fatalf("sync outcomes report SYNC, got %s", out.Operation)
	}
	if out.Metadata["operation"] != "SYNC" || out.Metadata["syncLeg"] != "CREATE" {
		t.Fatalf("expected SYNC metadata with the CREATE leg recorded, got %v", out.Metadata)
	}

	calls := fc.callNames()
	if len(calls) != 3 || calls[0] != "BAPI_MATERIAL_GET_DETAIL" || calls[1] != "BAPI_MATERIAL_SAVEDATA" || calls[2] != "BAPI_TRANSACTION_COMMIT" {
		t.Fatalf("expected read then create then commit, got %v", calls)
	}

	// The create builder ran: its header carries the full head structure.
	bag := fc.paramsFor("BAPI_MATERIAL_SAVEDATA")
	head, _ := bag["HEADDATA"].(map[string]any)
	if head["IND_SECTOR"] != "M" {
		t.Fatalf("expected the create builder's head data, got %v", head)
	}
}

// A Sync event whose read succeeds goes down the update path.
func TestProcessEventSyncUpdates(t *testing.T) {
	a, fc, _ := setup(t)
	fc.responses["BAPI_MATERIAL_GET_DETAIL"] = map[string]any{"MATERIAL": "MAT002"}
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}, "MATERIAL": "MAT002"}

	out := a.ProcessEvent(ctx(), rawEvent("Sync", "Product", "evt-1004", map[string]any{"id": "MAT002", "name": "Bolt"}))

	if !out.Success || out.Operation != outcome.OpSync {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.Metadata["operation"] != "SYNC" || out.Metadata["syncLeg"] != "UPDATE" {
		t.Fatalf("expected SYNC metadata with the UPDATE leg recorded, got %v", out.Metadata)
	}

	calls := fc.callNames()
	if len(calls) != 3 || calls[1] != "BAPI_MATERIAL_SAVEDATA" {
		t.Fatalf("expected read then update then commit, got %v", calls)
	}

	// The update builder ran: a minimal head, no industry sector.
	bag := fc.paramsFor("BAPI_MATERIAL_SAVEDATA")
	head, _ := bag["HEADDATA"].(map[string]any)
	if _, present := head["IND_SECTOR"]; present {
		t.Fatalf("expected the update builder's head data, got %v", head)
	}
}

// Delete maps to the update BAPI with the deletion flag merged in.
func TestProcessEventDelete(t *testing.T) {
	a, fc, _ := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}

	out := a.ProcessEvent(ctx(), rawEvent("Delete", "Product", "evt-1005", map[string]any{"id": "MAT001"}))

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if out.Operation != outcome.OpDelete {
		t.Fatalf("expected DELETE, got %s", out.Operation)
	}

	bag := fc.paramsFor("BAPI_MATERIAL_SAVEDATA")
	if bag["DELETION_FLAG"] != "X" {
		t.Fatalf("expected deletion flag in bag, got %v", bag)
	}
	date, _ := bag["DELETION_DATE"].(string)
	if len(date) != 8 {
		t.Fatalf("expected 8-digit deletion date, got %q", date)
	}
}

// Malformed payloads are rejected locally: no BAPI call, no RFC statistics,
// but the rejection still counts as a processed event.
func TestProcessEventRejectsUnknownType(t *testing.T) {
	a, fc, _ := setup(t)

	out := a.ProcessEvent(ctx(), rawEvent("Purge", "Product", "evt-1006", map[string]any{"id": "X"}))

	if out.Success {
		t.Fatal("expected rejection")
	}
	if out.Retryable {
		t.Fatal("validation rejections are permanent")
	}
	if out.Operation != outcome.OpProcess {
		t.Fatalf("expected PROCESS, got %s", out.Operation)
	}
	if out.EventID != "evt-1006" {
		t.Fatalf("rejection must carry the payload's event ID, got %q", out.EventID)
	}

	if calls := fc.callNames(); len(calls) != 0 {
		t.Fatalf("expected no BAPI calls, got %v", calls)
	}
	if rfcStats := a.Invoker().Stats(); rfcStats.CallsExecuted != 0 {
		t.Fatalf("rejections must not touch RFC statistics: %+v", rfcStats)
	}

	stats := a.Stats()
	if stats.EventsProcessed != 1 || stats.EventsFailed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

// Entity types without BAPI coverage fail permanently and dead-letter
// immediately.
func TestProcessEventUnsupportedEntityGoesToDLQ(t *testing.T) {
	a, fc, s := setup(t)

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Store", "evt-1007", map[string]any{"id": "PL01"}))

	if out.Success || out.Retryable {
		t.Fatalf("expected permanent failure, got %+v", out)
	}
	if calls := fc.callNames(); len(calls) != 0 {
		t.Fatalf("expected no BAPI calls, got %v", calls)
	}

	n, _ := s.CountDLQ(ctx())
	if n != 1 {
		t.Fatalf("expected 1 DLQ entry, got %d", n)
	}

	entries, _ := s.ListDLQ(ctx(), dlq.ListOpts{Limit: 1})
	if entries[0].EventID != "evt-1007" {
		t.Fatalf("unexpected DLQ entry: %+v", entries[0])
	}
	if entries[0].RawPayload["eventId"] != "evt-1007" {
		t.Fatal("DLQ entry must keep the raw payload for replay")
	}
}

// Retryable failures dead-letter once the retry budget is exhausted.
func TestProcessEventExhaustedRetriesGoToDLQ(t *testing.T) {
	a, fc, s := setup(t, adapter.WithMaxRetries(2))
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = errReturn("M3", "051", "exists")

	raw := rawEvent("Create", "Product", "evt-1008", map[string]any{"id": "MAT001"})
	raw["retryCount"] = float64(2)

	out := a.ProcessEvent(ctx(), raw)

	if out.Success || !out.Retryable {
		t.Fatalf("expected retryable failure, got %+v", out)
	}
	n, _ := s.CountDLQ(ctx())
	if n != 1 {
		t.Fatalf("expected DLQ entry after exhausted budget, got %d", n)
	}
}

func TestProcessEventWithoutCommit(t *testing.T) {
	a, fc, _ := setup(t, adapter.WithoutCommit())
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1009", map[string]any{"id": "MAT001"}))
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}

	if calls := fc.callNames(); len(calls) != 1 {
		t.Fatalf("expected commit suppressed, got %v", calls)
	}
}

func TestProcessEventSchemaValidation(t *testing.T) {
	a, fc, s := setup(t)
	if err := a.Validator().RegisterSchema("Product", []byte(`{
		"type": "object",
		"required": ["name"]
	}`)); err != nil {
		t.Fatal(err)
	}

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1010", map[string]any{"id": "MAT001"}))

	if out.Success || out.Retryable {
		t.Fatalf("expected permanent validation failure, got %+v", out)
	}
	if out.Operation != outcome.OpValidate {
		t.Fatalf("expected VALIDATE, got %s", out.Operation)
	}
	if calls := fc.callNames(); len(calls) != 0 {
		t.Fatalf("validation failures must not reach SAP, got %v", calls)
	}

	// Schema failures are permanent: straight to the DLQ.
	n, _ := s.CountDLQ(ctx())
	if n != 1 {
		t.Fatalf("expected 1 DLQ entry, got %d", n)
	}
}

// Transport errors classify as retryable failures.
func TestProcessEventTransportError(t *testing.T) {
	a, fc, _ := setup(t)
	fc.errs["BAPI_MATERIAL_SAVEDATA"] = errors.New("connection reset")

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1011", map[string]any{"id": "MAT001"}))

	if out.Success || !out.Retryable {
		t.Fatalf("expected retryable failure, got %+v", out)
	}
	if out.SAPResult != nil {
		t.Fatal("transport errors carry no SAP result")
	}
}

func TestObserverNotified(t *testing.T) {
	var mu sync.Mutex
	var tags []string
	var notes []adapter.Notification

	obs := func(tag string, n adapter.Notification) {
		mu.Lock()
		tags = append(tags, tag)
		notes = append(notes, n)
		mu.Unlock()
	}

	a, fc, _ := setup(t, adapter.WithObserver(obs))
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}, "MATERIAL": "MAT001"}

	a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1012", map[string]any{"id": "MAT001"}))

	mu.Lock()
	defer mu.Unlock()
	if len(tags) != 1 || tags[0] != "Create" {
		t.Fatalf("expected one Create notification, got %v", tags)
	}
	n := notes[0]
	if n.Event == nil || n.Event.ID != "evt-1012" {
		t.Fatalf("unexpected notification event: %+v", n.Event)
	}
	if n.Record == nil || n.Record.SAPKey != "MAT001" {
		t.Fatalf("unexpected notification record: %+v", n.Record)
	}
	if n.Outcome == nil || !n.Outcome.Success {
		t.Fatalf("unexpected notification outcome: %+v", n.Outcome)
	}
}

func TestObserverPanicRecovered(t *testing.T) {
	panicky := func(string, adapter.Notification) { panic("boom") }

	var called bool
	second := func(string, adapter.Notification) { called = true }

	a, fc, _ := setup(t, adapter.WithObserver(panicky), adapter.WithObserver(second))
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1013", map[string]any{"id": "MAT001"}))
	if !out.Success {
		t.Fatalf("observer panic must not affect the outcome, got %q", out.Error)
	}
	if !called {
		t.Fatal("later observers must still run after a panic")
	}
}

// Events without a payload id fall back to the event ID as the SAP key.
func TestProcessEventKeyFallback(t *testing.T) {
	a, fc, _ := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}

	out := a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1014", map[string]any{"name": "Widget"}))
	if !out.Success {
		t.Fatalf("expected success, got %q", out.Error)
	}

	bag := fc.paramsFor("BAPI_MATERIAL_SAVEDATA")
	head, _ := bag["HEADDATA"].(map[string]any)
	if head["MATERIAL"] != "evt-1014" {
		t.Fatalf("expected event ID fallback key, got %v", head["MATERIAL"])
	}
}

func TestStatsAverage(t *testing.T) {
	a, fc, _ := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}

	for i := 0; i < 3; i++ {
		a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1", map[string]any{"id": "MAT001"}))
	}
	a.ProcessEvent(ctx(), rawEvent("Purge", "Product", "evt-2", nil))

	stats := a.Stats()
	if stats.EventsProcessed != 4 || stats.EventsSucceeded != 3 || stats.EventsFailed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.AvgProcessingMs < 0 {
		t.Fatalf("average must be non-negative, got %f", stats.AvgProcessingMs)
	}
}

func TestEventsListing(t *testing.T) {
	a, fc, _ := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}}

	a.ProcessEvent(ctx(), rawEvent("Create", "Product", "evt-1", map[string]any{"id": "MAT001"}))
	a.ProcessEvent(ctx(), rawEvent("Update", "Product", "evt-2", map[string]any{"id": "MAT001", "name": "Bolt"}))

	events, err := a.Events(ctx(), event.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	got, err := a.Event(ctx(), "evt-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != event.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
}

func TestStoreBackedMethodsWithoutStore(t *testing.T) {
	a, err := adapter.New(adapter.WithCaller(newFakeCaller()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.Events(ctx(), event.ListOpts{}); !errors.Is(err, adapter.ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if _, err := a.Event(ctx(), "evt-1"); !errors.Is(err, adapter.ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	if a.DLQ() != nil {
		t.Fatal("expected no DLQ service without a store")
	}
}

// Dead-lettered events can be replayed through a submitter; a replay that
// then succeeds completes the event.
func TestReplayDLQRoundTrip(t *testing.T) {
	a, fc, s := setup(t)
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = errReturn("M3", "051", "exists")

	raw := rawEvent("Create", "Product", "evt-1015", map[string]any{"id": "MAT001"})
	raw["retryCount"] = float64(3)
	a.ProcessEvent(ctx(), raw)

	entries, _ := s.ListDLQ(ctx(), dlq.ListOpts{Limit: 1})
	if len(entries) != 1 {
		t.Fatalf("expected 1 DLQ entry, got %d", len(entries))
	}

	// SAP recovered; replay straight back into ProcessEvent.
	fc.responses["BAPI_MATERIAL_SAVEDATA"] = map[string]any{"RETURN": []any{}, "MATERIAL": "MAT001"}
	sub := processorSubmitter{a: a}
	if err := a.ReplayDLQ(ctx(), entries[0].ID, sub); err != nil {
		t.Fatal(err)
	}

	evt, err := a.Event(ctx(), "evt-1015")
	if err != nil {
		t.Fatal(err)
	}
	if evt.Status != event.StatusCompleted {
		t.Fatalf("expected completed after replay, got %s", evt.Status)
	}

	entry, _ := s.GetDLQ(ctx(), entries[0].ID)
	if entry.ReplayedAt == nil {
		t.Fatal("expected ReplayedAt to be stamped")
	}
}

// processorSubmitter replays synchronously through ProcessEvent.
type processorSubmitter struct {
	a *adapter.Adapter
}

func (p processorSubmitter) Enqueue(raw map[string]any) error {
	p.a.ProcessEvent(context.Background(), raw)
	return nil
}
