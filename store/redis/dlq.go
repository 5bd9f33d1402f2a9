package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	adapter "github.com/imarval/mele-sap-adapter"
	"github.com/imarval/mele-sap-adapter/dlq"
	"github.com/imarval/mele-sap-adapter/id"
)

// PushDLQ stores a new dead-letter entry.
func (s *Store) PushDLQ(ctx context.Context, entry *dlq.Entry) error {
	key := entityKey(prefixDLQ, entry.ID.String())

	if err := s.setEntity(ctx, key, entry); err != nil {
		return fmt.Errorf("adapter/redis: push dlq entry: %w", err)
	}

	score := scoreFromTime(entry.FailedAt)
	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, zDLQAll, goredis.Z{Score: score, Member: entry.ID.String()})
	pipe.ZAdd(ctx, zDLQEntity+entry.EntityType, goredis.Z{Score: score, Member: entry.ID.String()})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adapter/redis: push dlq indexes: %w", err)
	}

	return nil
}

// GetDLQ returns an entry by ID.
func (s *Store) GetDLQ(ctx context.Context, entryID id.ID) (*dlq.Entry, error) {
	var entry dlq.Entry
	if err := s.getEntity(ctx, entityKey(prefixDLQ, entryID.String()), &entry); err != nil {
		if isNotFound(err) {
			return nil, adapter.ErrDLQNotFound
		}
		return nil, fmt.Errorf("adapter/redis: get dlq entry: %w", err)
	}
	return &entry, nil
}

// ListDLQ returns entries matching the given options, newest first.
func (s *Store) ListDLQ(ctx context.Context, opts dlq.ListOpts) ([]*dlq.Entry, error) {
	indexKey := zDLQAll
	if opts.EntityType != "" {
		indexKey = zDLQEntity + opts.EntityType
	}

	ids, err := s.revRangeIDs(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("adapter/redis: list dlq: %w", err)
	}

	var result []*dlq.Entry
	for _, raw := range ids {
		entryID, err := id.Parse(raw)
		if err != nil {
			continue
		}
		entry, err := s.GetDLQ(ctx, entryID)
		if err != nil {
			if errors.Is(err, adapter.ErrDLQNotFound) {
				continue // index entry outlived the entity
			}
			return nil, err
		}
		if opts.From != nil && entry.FailedAt.Before(*opts.From) {
			continue
		}
		if opts.To != nil && entry.FailedAt.After(*opts.To) {
			continue
		}
		result = append(result, entry)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// MarkReplayed stamps an entry's ReplayedAt.
func (s *Store) MarkReplayed(ctx context.Context, entryID id.ID) error {
	entry, err := s.GetDLQ(ctx, entryID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry.ReplayedAt = &now
	entry.Touch()

	return s.setEntity(ctx, entityKey(prefixDLQ, entryID.String()), entry)
}

// DeleteDLQ removes an entry and its index members.
func (s *Store) DeleteDLQ(ctx context.Context, entryID id.ID) error {
	entry, err := s.GetDLQ(ctx, entryID)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, entityKey(prefixDLQ, entryID.String()))
	pipe.ZRem(ctx, zDLQAll, entryID.String())
	pipe.ZRem(ctx, zDLQEntity+entry.EntityType, entryID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adapter/redis: delete dlq entry: %w", err)
	}

	return nil
}

// CountDLQ returns the number of indexed entries.
func (s *Store) CountDLQ(ctx context.Context) (int64, error) {
	n, err := s.rdb.ZCard(ctx, zDLQAll).Result()
	if err != nil {
		return 0, fmt.Errorf("adapter/redis: count dlq: %w", err)
	}
	return n, nil
}
