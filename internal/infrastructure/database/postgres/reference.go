package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// DefaultQuery selects the reference columns in insertion order.
const DefaultQuery = "SELECT drug, target, affinity FROM reference_affinity ORDER BY id"

// Querier is the subset of pgxpool.Pool and pgx.Conn used here.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// ReferenceSource implements reference.Source. It opens a pool for the
// duration of Load and closes it afterwards; the table is read once at startup.
type ReferenceSource struct {
	cfg    config.PostgresConfig
	logger logging.Logger
}

// NewReferenceSource returns a source for cfg.
func NewReferenceSource(cfg config.PostgresConfig, logger logging.Logger) *ReferenceSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReferenceSource{cfg: cfg, logger: logger}
}

// Load implements reference.Source.
func (s *ReferenceSource) Load(ctx context.Context) ([]reference.Record, error) {
	pool, err := NewPool(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "load postgres reference")
	}
	defer pool.Close()

	recs, err := QueryRecords(ctx, pool, s.cfg.Query)
	if err != nil {
		return nil, err
	}
	s.logger.Info("postgres reference loaded", logging.Int("records", len(recs)))
	return recs, nil
}

// QueryRecords runs query (DefaultQuery when empty) and scans (drug, target,
// affinity) rows.
func QueryRecords(ctx context.Context, q Querier, query string) ([]reference.Record, error) {
	if query == "" {
		query = DefaultQuery
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return nil, errors.New(errors.ErrCodeReferenceLoadFailed, "reference query must be a SELECT")
	}
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "query reference table")
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (reference.Record, error) {
		var r reference.Record
		err := row.Scan(&r.Drug, &r.Target, &r.Affinity)
		return r, err
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "scan reference rows")
	}
	return recs, nil
}

// Store bulk-inserts records into reference_affinity with COPY.
func Store(ctx context.Context, q Querier, records []reference.Record) (int64, error) {
	n, err := q.CopyFrom(ctx,
		pgx.Identifier{"reference_affinity"},
		[]string{"drug", "target", "affinity"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Drug, r.Target, r.Affinity}, nil
		}),
	)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrCodeDatabaseError, fmt.Sprintf("copy %d reference records", len(records)))
	}
	return n, nil
}
