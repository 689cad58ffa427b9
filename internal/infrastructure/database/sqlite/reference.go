// Package sqlite serves reference measurements from an SQLite file using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/turtacn/dti-affinity/internal/domain/reference"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dti-affinity/pkg/errors"
)

// DefaultQuery selects the three reference columns in insertion order.
const DefaultQuery = "SELECT drug, target, affinity FROM reference_affinity ORDER BY id"

const schemaDDL = `CREATE TABLE IF NOT EXISTS reference_affinity (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  drug TEXT NOT NULL,
  target TEXT NOT NULL,
  affinity REAL NOT NULL
)`

// Open opens the database at path. SQLite does not support concurrent writers,
// so the pool is capped at one connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "open sqlite database")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// ReferenceSource implements reference.Source over a query returning
// (drug, target, affinity) rows.
type ReferenceSource struct {
	path   string
	query  string
	logger logging.Logger
}

// NewReferenceSource returns a source reading path. An empty query means DefaultQuery.
func NewReferenceSource(path, query string, logger logging.Logger) *ReferenceSource {
	if query == "" {
		query = DefaultQuery
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReferenceSource{path: path, query: query, logger: logger}
}

// Load implements reference.Source.
func (s *ReferenceSource) Load(ctx context.Context) ([]reference.Record, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "load sqlite reference")
	}
	db, err := Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "load sqlite reference")
	}
	defer db.Close()

	recs, err := QueryRecords(ctx, db, s.query)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sqlite reference loaded",
		logging.String("path", s.path),
		logging.Int("records", len(recs)))
	return recs, nil
}

// QueryRecords runs query on db and scans every row as a Record.
func QueryRecords(ctx context.Context, db *sql.DB, query string) ([]reference.Record, error) {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return nil, errors.New(errors.ErrCodeReferenceLoadFailed, "reference query must be a SELECT")
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "query reference table")
	}
	defer rows.Close()

	var out []reference.Record
	for rows.Next() {
		var r reference.Record
		if err := rows.Scan(&r.Drug, &r.Target, &r.Affinity); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed,
				fmt.Sprintf("scan reference row %d", len(out)+1))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceLoadFailed, "iterate reference rows")
	}
	return out, nil
}

// Import creates the reference_affinity table in the database at path when
// missing and appends records in one transaction. It returns the number of
// rows written.
func Import(ctx context.Context, path string, records []reference.Record) (int, error) {
	db, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "create reference_affinity")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "begin import")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO reference_affinity (drug, target, affinity) VALUES (?, ?, ?)")
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "prepare import")
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Drug, r.Target, r.Affinity); err != nil {
			return i, errors.Wrap(err, errors.ErrCodeDatabaseError, fmt.Sprintf("insert record %d", i+1))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "commit import")
	}
	return len(records), nil
}
