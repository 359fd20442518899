package weather

import (
	"context"
	"time"
)

// Provider abstracts the remote source of daily observations.
type Provider interface {
	Name() string
	FetchObservations(ctx context.Context, date time.Time) ([]Observation, error)
}

// Store is the contract the SQLite store satisfies.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	All(ctx context.Context) ([]Observation, error)
	ByDate(ctx context.Context, date string) ([]Observation, error)
	Drop(ctx context.Context) error
}

// Tx is a unit of work against the observation table. Rows written through a
// Tx are visible to its own reads before Commit.
type Tx interface {
	TableExists(ctx context.Context) (bool, error)
	// EnsureSchema creates the table and its index when missing and reports
	// whether it did so.
	EnsureSchema(ctx context.Context) (bool, error)
	Insert(ctx context.Context, obs Observation) error
	All(ctx context.Context) ([]Observation, error)
	Commit() error
	Rollback() error
}
