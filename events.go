package adapter

import (
	"context"

	"github.com/imarval/mele-sap-adapter/dlq"
	"github.com/imarval/mele-sap-adapter/event"
	"github.com/imarval/mele-sap-adapter/id"
)

// Event returns a stored event by its hub-assigned ID.
func (a *Adapter) Event(ctx context.Context, eventID string) (*event.Event, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	return a.store.GetEvent(ctx, eventID)
}

// Events returns stored events matching the given options, newest first.
func (a *Adapter) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	return a.store.ListEvents(ctx, opts)
}

// ReplayDLQ re-submits a dead-lettered event's original payload through the
// given submitter, typically the queue engine.
func (a *Adapter) ReplayDLQ(ctx context.Context, entryID id.ID, submitter dlq.Submitter) error {
	if a.dlqSvc == nil {
		return ErrNoStore
	}
	return a.dlqSvc.Replay(ctx, entryID, submitter)
}
