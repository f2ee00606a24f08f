package warmer

import (
	"context"
	"errors"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/cache"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

// Refresher re-fetches a table into the result cache.
type Refresher interface {
	Refresh(ctx context.Context, table types.TableID, fetch cache.FetchFunc) ([]types.AggregateRow, error)
}

// RowSource loads raw table rows.
type RowSource interface {
	Fetch(ctx context.Context, table types.TableID) ([]types.AggregateRow, error)
}

// RefreshJob reloads one table and publishes it as the shared snapshot.
type RefreshJob struct {
	table  types.TableID
	cache  Refresher
	source RowSource
}

func NewRefreshJob(table types.TableID, refresher Refresher, source RowSource) (*RefreshJob, error) {
	if _, ok := types.Descriptor(table); !ok {
		return nil, errors.New("unknown table " + string(table))
	}
	if refresher == nil {
		return nil, errors.New("cache required")
	}
	if source == nil {
		return nil, errors.New("row source required")
	}
	return &RefreshJob{table: table, cache: refresher, source: source}, nil
}

// RefreshJobs builds one job per table, or per registered table when none
// are given.
func RefreshJobs(refresher Refresher, source RowSource, tables ...types.TableID) ([]Job, error) {
	if len(tables) == 0 {
		for _, desc := range types.Tables() {
			tables = append(tables, desc.ID)
		}
	}
	jobs := make([]Job, 0, len(tables))
	for _, table := range tables {
		job, err := NewRefreshJob(table, refresher, source)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (j *RefreshJob) Name() string {
	return "refresh:" + string(j.table)
}

func (j *RefreshJob) Run(ctx context.Context) error {
	_, err := j.cache.Refresh(ctx, j.table, j.source.Fetch)
	return err
}
