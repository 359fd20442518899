package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/i474232898/metaweather-update/internal/common"
	"github.com/i474232898/metaweather-update/internal/weather"
)

var (
	// ErrTableMissing is returned when the observation table does not exist.
	ErrTableMissing = errors.New("observation table does not exist")
)

// indexName is the secondary index on the applicable date column.
const indexName = "idx_" + weather.TableName + "_" + weather.IndexedColumn

var (
	selectAllSQL    = fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", columnList(), weather.TableName)
	selectByDateSQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY rowid", columnList(), weather.TableName, weather.IndexedColumn)
	insertSQL       = fmt.Sprintf("INSERT INTO %s VALUES (%s)", weather.TableName, placeholders(len(weather.Columns)))
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore persists observations in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at path. The handle is
// limited to one connection.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Begin starts a transaction over the observation table.
func (s *SQLiteStore) Begin(ctx context.Context) (weather.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// TableExists reports whether the observation table exists.
func (s *SQLiteStore) TableExists(ctx context.Context) (bool, error) {
	return tableExists(ctx, s.db)
}

// All returns every stored observation in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]weather.Observation, error) {
	return queryObservations(ctx, s.db, selectAllSQL)
}

// ByDate returns the stored observations whose applicable date equals date.
func (s *SQLiteStore) ByDate(ctx context.Context, date string) ([]weather.Observation, error) {
	return queryObservations(ctx, s.db, selectByDateSQL, date)
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+weather.TableName).Scan(&n)
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// Drop removes the observation table together with its index.
func (s *SQLiteStore) Drop(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE "+weather.TableName); err != nil {
		return classify(err)
	}
	return nil
}

// Tx implements weather.Tx on a *sql.Tx.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) TableExists(ctx context.Context) (bool, error) {
	return tableExists(ctx, t.tx)
}

func (t *Tx) EnsureSchema(ctx context.Context) (bool, error) {
	exists, err := tableExists(ctx, t.tx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := t.tx.ExecContext(ctx, createTableSQL()); err != nil {
		return false, fmt.Errorf("create table: %w", err)
	}

	createIndex := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", indexName, weather.TableName, weather.IndexedColumn)
	if _, err := t.tx.ExecContext(ctx, createIndex); err != nil {
		return false, fmt.Errorf("create index: %w", err)
	}
	return true, nil
}

func (t *Tx) Insert(ctx context.Context, obs weather.Observation) error {
	if _, err := t.tx.ExecContext(ctx, insertSQL, obs.Values()...); err != nil {
		return classify(err)
	}
	return nil
}

func (t *Tx) All(ctx context.Context) ([]weather.Observation, error) {
	return queryObservations(ctx, t.tx, selectAllSQL)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback is a no-op after Commit.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func tableExists(ctx context.Context, q querier) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		weather.TableName,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func queryObservations(ctx context.Context, q querier, query string, args ...any) ([]weather.Observation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []weather.Observation
	for rows.Next() {
		var o weather.Observation
		if err := rows.Scan(o.Targets()...); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classify maps the driver's missing-table error onto ErrTableMissing.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if common.HasAny(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrTableMissing, err)
	}
	return err
}

func createTableSQL() string {
	defs := make([]string, len(weather.Columns))
	for i, col := range weather.Columns {
		defs[i] = col.Name + " " + col.SQLType
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", weather.TableName, strings.Join(defs, ", "))
}

func columnList() string {
	names := make([]string, len(weather.Columns))
	for i, col := range weather.Columns {
		names[i] = col.Name
	}
	return strings.Join(names, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
