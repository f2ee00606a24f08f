package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	"github.com/angelmondragon/pulse-analytics/pkg/db"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
	"github.com/angelmondragon/pulse-analytics/pkg/metrics"
)

// Store reads raw rows from the aggregate tables. It never groups.
type Store struct {
	conn     *gorm.DB
	metrics  *metrics.QueryMetrics
	logg     *logger.Logger
	verified sync.Map
}

type Option func(*Store)

func WithMetrics(m *metrics.QueryMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func New(conn *gorm.DB, opts ...Option) *Store {
	s := &Store{conn: conn, logg: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record is the scan target shared by every binding; unselected fields stay zero.
type record struct {
	Year              int             `gorm:"column:year"`
	Quarter           int             `gorm:"column:quarter"`
	State             string          `gorm:"column:state"`
	District          string          `gorm:"column:district"`
	Brand             string          `gorm:"column:brand"`
	TransactionType   string          `gorm:"column:transaction_type"`
	TransactionCount  int64           `gorm:"column:transaction_count"`
	TransactionAmount decimal.Decimal `gorm:"column:transaction_amount"`
	RegisteredUsers   int64           `gorm:"column:registered_users"`
	AppOpens          int64           `gorm:"column:app_opens"`
}

func (r record) row() types.AggregateRow {
	return types.AggregateRow{
		Year:              r.Year,
		Quarter:           r.Quarter,
		State:             r.State,
		District:          r.District,
		Brand:             r.Brand,
		TransactionType:   r.TransactionType,
		TransactionCount:  r.TransactionCount,
		TransactionAmount: r.TransactionAmount,
		RegisteredUsers:   r.RegisteredUsers,
		AppOpens:          r.AppOpens,
	}
}

// Fetch loads every row of table.
func (s *Store) Fetch(ctx context.Context, table types.TableID) ([]types.AggregateRow, error) {
	return s.FetchPeriod(ctx, table, types.AllTime)
}

// FetchPeriod loads the rows of table inside period, filtering in SQL. On
// failure it returns an empty slice with a DATA_SOURCE_UNAVAILABLE or
// SCHEMA_MISMATCH error.
func (s *Store) FetchPeriod(ctx context.Context, table types.TableID, period types.Period) ([]types.AggregateRow, error) {
	ctx = s.logg.WithTable(ctx, string(table))
	start := time.Now()
	rows, err := s.fetch(ctx, table, period)
	s.metrics.ObserveFetch(string(table), time.Since(start))
	if err != nil {
		code := pkgerrors.CodeDataSourceUnavailable
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFetchFailure(string(table), string(code))
		s.logg.Error(s.logg.WithField(ctx, "dump", pkgerrors.Dump(err)), "fetching aggregate rows", err)
		return []types.AggregateRow{}, err
	}
	return rows, nil
}

func (s *Store) fetch(ctx context.Context, table types.TableID, period types.Period) ([]types.AggregateRow, error) {
	b, ok := bindings[table]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuery, "unknown table").
			WithDetails(map[string]any{"table": table})
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if err := s.ping(ctx); err != nil {
		return nil, err
	}
	if err := s.verify(ctx, table, b); err != nil {
		return nil, err
	}

	sql, args := b.query(period)
	var records []record
	if err := s.conn.WithContext(ctx).Raw(sql, args...).Scan(&records).Error; err != nil {
		if db.IsUndefinedObject(err) {
			s.verified.Delete(table)
			return nil, pkgerrors.Wrap(pkgerrors.CodeSchemaMismatch, err, "source table changed under the query").
				WithDetails(map[string]any{"table": b.table})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataSourceUnavailable, err, "querying aggregate table")
	}

	rows := make([]types.AggregateRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return rows, nil
}

func (s *Store) ping(ctx context.Context) error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDataSourceUnavailable, err, "database handle unavailable")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDataSourceUnavailable, err, "database unreachable")
	}
	return nil
}

// verify checks the physical table once per process and reports every
// missing column at the same time.
func (s *Store) verify(ctx context.Context, table types.TableID, b binding) error {
	if _, ok := s.verified.Load(table); ok {
		return nil
	}
	migrator := s.conn.WithContext(ctx).Migrator()
	if !migrator.HasTable(b.table) {
		return pkgerrors.New(pkgerrors.CodeSchemaMismatch, "source table missing").
			WithDetails(map[string]any{"table": b.table, "missing": []string{b.table}})
	}

	var (
		missing []string
		errs    error
	)
	for _, c := range b.columns {
		if migrator.HasColumn(b.table, c.physical) {
			continue
		}
		missing = append(missing, c.physical)
		errs = multierr.Append(errs, fmt.Errorf("column %s.%s not found", b.table, c.physical))
	}
	if errs != nil {
		sort.Strings(missing)
		return pkgerrors.Wrap(pkgerrors.CodeSchemaMismatch, errs, "source table missing columns").
			WithDetails(map[string]any{"table": b.table, "missing": missing})
	}

	s.verified.Store(table, struct{}{})
	return nil
}
