package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	adapter "github.com/imarval/mele-sap-adapter"
	"github.com/imarval/mele-sap-adapter/event"
)

// SaveEvent creates or updates an event keyed by its hub-assigned ID.
func (s *Store) SaveEvent(ctx context.Context, e *event.Event) error {
	key := entityKey(prefixEvent, e.ID)

	if err := s.setEntity(ctx, key, e); err != nil {
		return fmt.Errorf("adapter/redis: save event: %w", err)
	}

	score := scoreFromTime(e.CreatedAt)
	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, zEventAll, goredis.Z{Score: score, Member: e.ID})
	pipe.ZAdd(ctx, zEventEntity+e.EntityType, goredis.Z{Score: score, Member: e.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adapter/redis: save event indexes: %w", err)
	}

	return nil
}

// GetEvent returns an event by its hub-assigned ID.
func (s *Store) GetEvent(ctx context.Context, eventID string) (*event.Event, error) {
	var e event.Event
	if err := s.getEntity(ctx, entityKey(prefixEvent, eventID), &e); err != nil {
		if isNotFound(err) {
			return nil, adapter.ErrEventNotFound
		}
		return nil, fmt.Errorf("adapter/redis: get event: %w", err)
	}
	return &e, nil
}

// ListEvents returns events matching the given options, newest first.
func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	indexKey := zEventAll
	if opts.EntityType != "" {
		indexKey = zEventEntity + opts.EntityType
	}

	ids, err := s.revRangeIDs(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("adapter/redis: list events: %w", err)
	}

	var result []*event.Event
	for _, eventID := range ids {
		e, err := s.GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, adapter.ErrEventNotFound) {
				continue // index entry outlived the entity
			}
			return nil, err
		}
		if opts.Status != nil && e.Status != *opts.Status {
			continue
		}
		result = append(result, e)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// CountEvents returns the number of indexed events.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	n, err := s.rdb.ZCard(ctx, zEventAll).Result()
	if err != nil {
		return 0, fmt.Errorf("adapter/redis: count events: %w", err)
	}
	return n, nil
}
