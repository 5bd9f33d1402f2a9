package adapter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/imarval/mele-sap-adapter/dlq"
	"github.com/imarval/mele-sap-adapter/event"
	"github.com/imarval/mele-sap-adapter/mapping"
	"github.com/imarval/mele-sap-adapter/observability"
	"github.com/imarval/mele-sap-adapter/outcome"
	"github.com/imarval/mele-sap-adapter/params"
	"github.com/imarval/mele-sap-adapter/record"
	"github.com/imarval/mele-sap-adapter/rfc"
	"github.com/imarval/mele-sap-adapter/scope"
	"github.com/imarval/mele-sap-adapter/store"
)

// Notification is the payload delivered to registered observers after each
// processed event.
type Notification struct {
	Event   *event.Event
	Record  *record.Record
	Outcome *outcome.Outcome
}

// Observer receives a notification after each processed event. The tag is
// the event's change kind as a string.
type Observer func(tag string, n Notification)

// Adapter is the root event-to-BAPI relay engine.
type Adapter struct {
	config    Config
	caller    rfc.Caller
	invoker   *rfc.Invoker
	mappings  *mapping.Registry
	builders  *params.Registry
	validator *mapping.Validator
	store     store.Store
	dlqSvc    *dlq.Service
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	observers []Observer

	statsMu sync.Mutex
	stats   Stats
}

// New creates a new Adapter with the given options.
func New(opts ...Option) (*Adapter, error) {
	a := &Adapter{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.caller == nil {
		return nil, ErrNoCaller
	}
	a.wireServices()
	return a, nil
}

// wireServices initializes the internal services after options have been applied.
func (a *Adapter) wireServices() {
	a.invoker = rfc.NewInvoker(a.caller, a.logger)
	a.mappings = mapping.NewRegistry()
	a.builders = params.NewRegistry()
	a.validator = mapping.NewValidator()

	if a.store != nil {
		a.dlqSvc = dlq.NewService(a.store, a.logger)
		a.dlqSvc.UseMetrics(a.metrics)
	}
}

// Mappings returns the entity mapping registry, for registering additional
// entity definitions.
func (a *Adapter) Mappings() *mapping.Registry {
	return a.mappings
}

// Builders returns the parameter builder registry.
func (a *Adapter) Builders() *params.Registry {
	return a.builders
}

// Validator returns the payload schema validator.
func (a *Adapter) Validator() *mapping.Validator {
	return a.validator
}

// Invoker returns the RFC invocation orchestrator.
func (a *Adapter) Invoker() *rfc.Invoker {
	return a.invoker
}

// DLQ returns the dead letter queue service, or nil without a store.
func (a *Adapter) DLQ() *dlq.Service {
	return a.dlqSvc
}

// Store returns the underlying store, or nil.
func (a *Adapter) Store() store.Store {
	return a.store
}

// ProcessEvent relays one raw hub payload to SAP and returns the normalized
// outcome. It never returns an error: every failure path is classified into
// a failure Outcome.
//
// The critical path:
//  1. Build the canonical event (reject malformed payloads locally).
//  2. Validate payload data against the entity's schema, if registered.
//  3. Derive the SAP record (entity category, object key, tenant context).
//  4. Dispatch on the change kind: create, update, delete (deletion-flag
//     special case) or sync (read, then create or update).
//  5. Update aggregate statistics and the event's lifecycle state.
//  6. Persist the event and dead-letter it when permanently failed.
//  7. Notify observers.
func (a *Adapter) ProcessEvent(ctx context.Context, raw map[string]any) *outcome.Outcome {
	start := time.Now()
	ctx, _ = scope.EnsureCorrelation(ctx)

	// 1. Canonical event construction. Failures short-circuit without
	// touching any RFC statistics: no call was attempted.
	evt, err := event.FromRawPayload(raw)
	if err != nil {
		out := outcome.NewFailure(event.PeekID(raw), "", outcome.OpProcess, err.Error()).Permanent()
		out.SetProcessingTime(start)
		a.recordEvent(out)
		a.logger.WarnContext(ctx, "rejected malformed event", "error", err)
		return out
	}

	if evt.Context != nil {
		ctx = scope.Restore(ctx, evt.Context.TenantID, evt.Context.CorrelationID)
	}

	var span trace.Span
	if a.tracer != nil {
		ctx, span = a.tracer.StartEventSpan(ctx, evt.ID, string(evt.Type), evt.EntityType)
	}

	out, rec := a.process(ctx, evt, start)

	// Persistence and dead-lettering are best-effort: the outcome already
	// reflects the relay result.
	a.persist(ctx, evt, raw, out)

	a.notify(string(evt.Type), Notification{Event: evt, Record: rec, Outcome: out})

	tenantID, correlationID := scope.Capture(ctx)
	a.logger.DebugContext(ctx, "event relayed",
		"event_id", evt.ID,
		"operation", out.Operation,
		"success", out.Success,
		"tenant_id", tenantID,
		"correlation_id", correlationID,
	)

	if span != nil {
		var ms int64
		if out.ProcessingTimeMs != nil {
			ms = *out.ProcessingTimeMs
		}
		a.tracer.EndEventSpan(span, string(out.Operation), out.Success, ms, out.Error)
	}

	return out
}

// process runs steps 2-5 of the pipeline for a validated canonical event.
// It returns the outcome together with the derived SAP record, when one
// was built.
func (a *Adapter) process(ctx context.Context, evt *event.Event, start time.Time) (*outcome.Outcome, *record.Record) {
	// 2. Optional schema validation.
	if err := a.validator.Validate(evt.EntityType, evt.Data); err != nil {
		out := outcome.NewFailure(evt.ID, evt.EntityType, outcome.OpValidate, err.Error()).Permanent()
		a.finish(evt, out, start)
		return out, nil
	}

	// 3. Derive the SAP record.
	rec, err := a.deriveRecord(evt)
	if err != nil {
		out := outcome.NewFailure(evt.ID, evt.EntityType, outcome.OpProcess, err.Error()).Permanent()
		a.finish(evt, out, start)
		return out, nil
	}

	// 4. Dispatch on the change kind.
	var out *outcome.Outcome
	switch evt.Type {
	case event.TypeCreate:
		out = a.runWrite(ctx, evt, rec, mapping.KindCreate, outcome.OpCreate, nil)
	case event.TypeUpdate:
		out = a.runWrite(ctx, evt, rec, mapping.KindUpdate, outcome.OpUpdate, nil)
	case event.TypeDelete:
		out = a.runDelete(ctx, evt, rec)
	case event.TypeSync:
		out = a.runSync(ctx, evt, rec)
	default:
		// Unreachable: FromRawPayload enforces the closed enumeration.
		out = outcome.NewFailure(evt.ID, evt.EntityType, outcome.OpProcess,
			"unsupported event type "+string(evt.Type)).Permanent()
	}

	// 5. Statistics, lifecycle, timing.
	a.finish(evt, out, start)
	return out, rec
}

// deriveRecord builds the SAP-side record for an event.
func (a *Adapter) deriveRecord(evt *event.Event) (*record.Record, error) {
	tenant := a.config.Tenant
	if evt.Context != nil && evt.Context.TenantID != "" {
		tenant.Client = evt.Context.TenantID
	}

	key := ""
	if v, ok := evt.Data["id"].(string); ok {
		key = v
	}

	return record.New(mapping.SAPEntityType(evt.EntityType), key, evt.ID, evt.Data, tenant)
}

// runWrite resolves and executes a write-style BAPI call (with commit)
// and normalizes the response.
func (a *Adapter) runWrite(ctx context.Context, evt *event.Event, rec *record.Record, kind mapping.Kind, op outcome.Operation, extra map[string]any) *outcome.Outcome {
	oper, err := a.mappings.Resolve(rec.SAPEntityType, kind)
	if err != nil {
		return outcome.NewFailure(evt.ID, evt.EntityType, op, err.Error()).Permanent()
	}

	bag := a.builders.Build(oper.BuilderID, rec.Data, a.paramsContext(rec))
	for k, v := range extra {
		bag[k] = v
	}

	callStart := time.Now()
	response, callErr := a.invoker.InvokeWrite(ctx, oper.BAPI, bag, a.config.DisableCommit)
	a.recordCall(oper.BAPI, callStart)

	return outcome.Normalize(evt.ID, evt.EntityType, op, response, callErr)
}

// runRead resolves and executes a read-style BAPI call without commit.
func (a *Adapter) runRead(ctx context.Context, evt *event.Event, rec *record.Record) *outcome.Outcome {
	oper, err := a.mappings.Resolve(rec.SAPEntityType, mapping.KindRead)
	if err != nil {
		return outcome.NewFailure(evt.ID, evt.EntityType, outcome.OpRead, err.Error()).Permanent()
	}

	bag := a.builders.Build(oper.BuilderID, rec.Data, a.paramsContext(rec))

	callStart := time.Now()
	response, callErr := a.invoker.Invoke(ctx, oper.BAPI, bag)
	a.recordCall(oper.BAPI, callStart)

	return outcome.Normalize(evt.ID, evt.EntityType, outcome.OpRead, response, callErr)
}

// runDelete maps a Delete event to the deletion-flag update (or a physical
// delete when configured and supported).
func (a *Adapter) runDelete(ctx context.Context, evt *event.Event, rec *record.Record) *outcome.Outcome {
	oper, extra, err := a.mappings.ResolveDelete(rec.SAPEntityType, a.config.PhysicalDelete)
	if err != nil {
		return outcome.NewFailure(evt.ID, evt.EntityType, outcome.OpDelete, err.Error()).Permanent()
	}

	bag := a.builders.Build(oper.BuilderID, rec.Data, a.paramsContext(rec))
	for k, v := range extra {
		bag[k] = v
	}

	callStart := time.Now()
	response, callErr := a.invoker.InvokeWrite(ctx, oper.BAPI, bag, a.config.DisableCommit)
	a.recordCall(oper.BAPI, callStart)

	return outcome.Normalize(evt.ID, evt.EntityType, outcome.OpDelete, response, callErr)
}

// runSync reconciles an entity: read its SAP state, then create when the
// read fails (record absent or transport error) or update when it exists.
// The update is unconditional: no field-level diffing is performed.
func (a *Adapter) runSync(ctx context.Context, evt *event.Event, rec *record.Record) *outcome.Outcome {
	readOut := a.runRead(ctx, evt, rec)

	var out *outcome.Outcome
	if readOut.Success {
		out = a.runWrite(ctx, evt, rec, mapping.KindUpdate, outcome.OpUpdate, nil)
	} else {
		out = a.runWrite(ctx, evt, rec, mapping.KindCreate, outcome.OpCreate, nil)
	}

	// The outcome reports SYNC; the write leg actually taken is kept in
	// the metadata for diagnostics.
	if out.Metadata != nil {
		if leg, ok := out.Metadata["operation"]; ok {
			out.Metadata["syncLeg"] = leg
		}
		out.Metadata["operation"] = string(outcome.OpSync)
	}
	out.Operation = outcome.OpSync
	return out
}

// paramsContext builds the builder call context from a record.
func (a *Adapter) paramsContext(rec *record.Record) params.Context {
	return params.Context{
		SAPKey:      rec.SAPKey,
		Client:      rec.Tenant.Client,
		CompanyCode: rec.Tenant.CompanyCode,
		Plant:       rec.Tenant.Plant,
		Warehouse:   rec.Tenant.Warehouse,
		Language:    rec.Tenant.Language,
	}
}

// finish applies statistics, lifecycle state and timing to a completed
// outcome.
func (a *Adapter) finish(evt *event.Event, out *outcome.Outcome, start time.Time) {
	evt.MarkAsProcessed(out.Success, out.Error)
	out.SetProcessingTime(start)
	a.recordEvent(out)
}

// persist saves the event and dead-letters permanently failed ones.
func (a *Adapter) persist(ctx context.Context, evt *event.Event, raw map[string]any, out *outcome.Outcome) {
	if a.store == nil {
		return
	}

	if err := a.store.SaveEvent(ctx, evt); err != nil {
		a.logger.ErrorContext(ctx, "persist event failed", "event_id", evt.ID, "error", err)
	}

	if out.Success {
		return
	}

	exhausted := evt.RetryCount >= a.config.MaxRetries
	if !out.Retryable || exhausted {
		if err := a.dlqSvc.PushFailed(ctx, evt, raw, out); err != nil {
			a.logger.ErrorContext(ctx, "push to DLQ failed", "event_id", evt.ID, "error", err)
		}
	}
}

// notify delivers the notification to every registered observer. Observer
// panics are recovered and logged, never propagated.
func (a *Adapter) notify(tag string, n Notification) {
	for _, obs := range a.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("observer panicked", "tag", tag, "panic", r)
				}
			}()
			obs(tag, n)
		}()
	}
}

func (a *Adapter) recordCall(bapi string, start time.Time) {
	if a.metrics != nil {
		a.metrics.RecordCall(bapi, time.Since(start).Seconds())
	}
}
