package dlq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imarval/mele-sap-adapter/event"
	"github.com/imarval/mele-sap-adapter/id"
	"github.com/imarval/mele-sap-adapter/internal/entity"
	"github.com/imarval/mele-sap-adapter/observability"
	"github.com/imarval/mele-sap-adapter/outcome"
)

// Submitter re-enqueues a raw payload for processing. Implemented by the
// queue engine.
type Submitter interface {
	Enqueue(raw map[string]any) error
}

// Service manages the dead letter queue.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a new DLQ service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// UseMetrics attaches metric instruments. The DLQ size gauge moves with the
// stored entries: incremented on push, decremented on delete.
func (svc *Service) UseMetrics(m *observability.Metrics) {
	svc.metrics = m
}

// PushFailed stores a dead-letter entry for an event whose processing
// permanently failed.
func (svc *Service) PushFailed(ctx context.Context, evt *event.Event, raw map[string]any, out *outcome.Outcome) error {
	entry := &Entry{
		Entity:     entity.New(),
		ID:         id.NewDLQID(),
		EventID:    evt.ID,
		EventType:  string(evt.Type),
		EntityType: evt.EntityType,
		Operation:  string(out.Operation),
		RawPayload: raw,
		Error:      out.Error,
		RetryCount: evt.RetryCount,
		FailedAt:   time.Now().UTC(),
	}

	if err := svc.store.PushDLQ(ctx, entry); err != nil {
		return fmt.Errorf("dlq: push entry: %w", err)
	}
	if svc.metrics != nil {
		svc.metrics.DLQSize.Inc()
	}

	svc.logger.WarnContext(ctx, "event moved to DLQ",
		"event_id", evt.ID, "entity_type", evt.EntityType, "error", out.Error)

	return nil
}

// Get returns an entry by ID.
func (svc *Service) Get(ctx context.Context, entryID id.ID) (*Entry, error) {
	return svc.store.GetDLQ(ctx, entryID)
}

// List returns entries matching the given options.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*Entry, error) {
	return svc.store.ListDLQ(ctx, opts)
}

// Count returns the number of stored entries.
func (svc *Service) Count(ctx context.Context) (int64, error) {
	return svc.store.CountDLQ(ctx)
}

// Delete removes an entry.
func (svc *Service) Delete(ctx context.Context, entryID id.ID) error {
	if err := svc.store.DeleteDLQ(ctx, entryID); err != nil {
		return err
	}
	if svc.metrics != nil {
		svc.metrics.DLQSize.Dec()
	}
	return nil
}

// Replay re-submits an entry's original raw payload through the given
// submitter and stamps ReplayedAt. The entry itself stays in the DLQ until
// explicitly deleted.
func (svc *Service) Replay(ctx context.Context, entryID id.ID, submitter Submitter) error {
	entry, err := svc.store.GetDLQ(ctx, entryID)
	if err != nil {
		return err
	}

	if err := submitter.Enqueue(entry.RawPayload); err != nil {
		return fmt.Errorf("dlq: replay %s: %w", entryID, err)
	}

	if err := svc.store.MarkReplayed(ctx, entryID); err != nil {
		return err
	}

	svc.logger.InfoContext(ctx, "DLQ entry replayed", "entry_id", entryID, "event_id", entry.EventID)

	return nil
}
