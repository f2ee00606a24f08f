package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

// SnapshotStore is the subset of pkg/redis.Client used by RedisRemote.
type SnapshotStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RowsKey(table string) string
}

// RedisRemote keeps JSON snapshots of table rows in Redis so replicas share
// one fetch per window.
type RedisRemote struct {
	store SnapshotStore
}

func NewRedisRemote(store SnapshotStore) *RedisRemote {
	return &RedisRemote{store: store}
}

func (r *RedisRemote) Load(ctx context.Context, table types.TableID) (Snapshot, bool, error) {
	payload, found, err := r.store.GetBytes(ctx, r.store.RowsKey(string(table)))
	if err != nil || !found {
		return Snapshot{}, false, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode %s snapshot: %w", table, err)
	}
	return snapshot, true, nil
}

func (r *RedisRemote) Save(ctx context.Context, table types.TableID, snapshot Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", table, err)
	}
	return r.store.Set(ctx, r.store.RowsKey(string(table)), payload, ttl)
}

func (r *RedisRemote) Drop(ctx context.Context, table types.TableID) error {
	return r.store.Del(ctx, r.store.RowsKey(string(table)))
}
