package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
	"github.com/angelmondragon/pulse-analytics/pkg/metrics"
)

// DefaultTTL is how long a fetched table stays valid.
const DefaultTTL = 600 * time.Second

// FetchFunc loads every row of a table from the backing store.
type FetchFunc func(ctx context.Context, table types.TableID) ([]types.AggregateRow, error)

// Remote is a shared snapshot tier consulted before the store on a local miss.
type Remote interface {
	Load(ctx context.Context, table types.TableID) (Snapshot, bool, error)
	Save(ctx context.Context, table types.TableID, snapshot Snapshot, ttl time.Duration) error
	Drop(ctx context.Context, table types.TableID) error
}

// Snapshot is a table's rows together with the time they were fetched.
type Snapshot struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Rows      []types.AggregateRow `json:"rows"`
}

type entry struct {
	rows      []types.AggregateRow
	expiresAt time.Time
}

// Cache memoizes table fetches for a fixed TTL. Valid entries are read without
// locking; at most one fetch per table is in flight at a time.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	entries sync.Map
	flight  singleflight.Group
	remote  Remote
	metrics *metrics.QueryMetrics
	logg    *logger.Logger
}

type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRemote enables the shared snapshot tier.
func WithRemote(remote Remote) Option {
	return func(c *Cache) {
		c.remote = remote
	}
}

func WithMetrics(m *metrics.QueryMetrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Cache) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// New builds a cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:  ttl,
		now:  time.Now,
		logg: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the validity window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// GetOrFetch returns the rows cached for table, calling fetch when there is no
// valid entry. Within one validity window every caller receives the same
// slice, which must be treated as read-only. Failed fetches are not cached:
// the caller gets an empty slice together with the error.
func (c *Cache) GetOrFetch(ctx context.Context, table types.TableID, fetch FetchFunc) ([]types.AggregateRow, error) {
	if rows, ok := c.lookup(table); ok {
		c.metrics.IncCache(string(table), metrics.CacheHit)
		return rows, nil
	}

	value, err, _ := c.flight.Do(string(table), func() (any, error) {
		if rows, ok := c.lookup(table); ok {
			c.metrics.IncCache(string(table), metrics.CacheHit)
			return rows, nil
		}
		if rows, ok := c.loadRemote(ctx, table); ok {
			c.metrics.IncCache(string(table), metrics.CacheRemoteHit)
			return rows, nil
		}

		c.metrics.IncCache(string(table), metrics.CacheMiss)
		rows, err := fetch(ctx, table)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []types.AggregateRow{}
		}
		fetchedAt := c.now()
		c.entries.Store(table, &entry{rows: rows, expiresAt: fetchedAt.Add(c.ttl)})
		c.saveRemote(ctx, table, Snapshot{FetchedAt: fetchedAt, Rows: rows})
		return rows, nil
	})
	if err != nil {
		return []types.AggregateRow{}, err
	}
	return value.([]types.AggregateRow), nil
}

// Refresh fetches table unconditionally and replaces both the local entry and
// the shared snapshot. Concurrent readers keep the old rows until it returns.
func (c *Cache) Refresh(ctx context.Context, table types.TableID, fetch FetchFunc) ([]types.AggregateRow, error) {
	value, err, _ := c.flight.Do(string(table), func() (any, error) {
		rows, err := fetch(ctx, table)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []types.AggregateRow{}
		}
		fetchedAt := c.now()
		c.entries.Store(table, &entry{rows: rows, expiresAt: fetchedAt.Add(c.ttl)})
		c.saveRemote(ctx, table, Snapshot{FetchedAt: fetchedAt, Rows: rows})
		return rows, nil
	})
	if err != nil {
		return []types.AggregateRow{}, err
	}
	return value.([]types.AggregateRow), nil
}

// Invalidate drops the local entry and the shared snapshot for table.
func (c *Cache) Invalidate(ctx context.Context, table types.TableID) {
	c.entries.Delete(table)
	if c.remote == nil {
		return
	}
	if err := c.remote.Drop(ctx, table); err != nil {
		c.logg.Error(c.logg.WithTable(ctx, string(table)), "dropping shared cache snapshot", err)
	}
}

// Len counts local entries that are still valid.
func (c *Cache) Len() int {
	now := c.now()
	n := 0
	c.entries.Range(func(_, value any) bool {
		if now.Before(value.(*entry).expiresAt) {
			n++
		}
		return true
	})
	return n
}

func (c *Cache) lookup(table types.TableID) ([]types.AggregateRow, bool) {
	value, ok := c.entries.Load(table)
	if !ok {
		return nil, false
	}
	e := value.(*entry)
	if !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.rows, true
}

// loadRemote adopts a shared snapshot that is still inside its window. The
// local entry expires when the snapshot does, not a full TTL later.
func (c *Cache) loadRemote(ctx context.Context, table types.TableID) ([]types.AggregateRow, bool) {
	if c.remote == nil {
		return nil, false
	}
	snapshot, found, err := c.remote.Load(ctx, table)
	if err != nil {
		c.logg.Warn(c.logg.WithTable(ctx, string(table)), "shared cache read failed: "+err.Error())
		return nil, false
	}
	if !found {
		return nil, false
	}
	expiresAt := snapshot.FetchedAt.Add(c.ttl)
	if !c.now().Before(expiresAt) {
		return nil, false
	}
	rows := snapshot.Rows
	if rows == nil {
		rows = []types.AggregateRow{}
	}
	c.entries.Store(table, &entry{rows: rows, expiresAt: expiresAt})
	return rows, true
}

func (c *Cache) saveRemote(ctx context.Context, table types.TableID, snapshot Snapshot) {
	if c.remote == nil {
		return
	}
	if err := c.remote.Save(ctx, table, snapshot, c.ttl); err != nil {
		c.logg.Warn(c.logg.WithTable(ctx, string(table)), "shared cache write failed: "+err.Error())
	}
}
