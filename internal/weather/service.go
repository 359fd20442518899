package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoObservations is returned when no stored rows match a request.
var ErrNoObservations = errors.New("no observations stored")

// Service orchestrates fetching observations and persisting them.
type Service struct {
	store    Store
	provider Provider
	debug    bool
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// SetDebug enables DEBUG logging, including the literal form of each insert.
func (s *Service) SetDebug(debug bool) {
	s.debug = debug
}

// UpdateResult describes one update run.
type UpdateResult struct {
	RunID        string `json:"runId"`
	Date         string `json:"date"`
	Fetched      int    `json:"fetched"`
	TableCreated bool   `json:"tableCreated"`
	TotalRows    int    `json:"totalRows"`
}

// UpdateAndDisplay fetches the observations for date, creates the table when
// it is missing, appends every fetched observation, writes all stored rows to
// w and commits. Rows are appended without duplicate checks. On any error the
// transaction is rolled back.
func (s *Service) UpdateAndDisplay(ctx context.Context, date time.Time, w io.Writer) (UpdateResult, error) {
	result := UpdateResult{
		RunID: uuid.NewString(),
		Date:  date.Format(DateLayout),
	}

	if s.provider == nil {
		return result, fmt.Errorf("no weather provider configured")
	}

	log.Printf("INFO: [%s] fetching observations for %s from %s", result.RunID, result.Date, s.provider.Name())
	observations, err := s.provider.FetchObservations(ctx, date)
	if err != nil {
		return result, fmt.Errorf("fetch observations: %w", err)
	}
	result.Fetched = len(observations)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("ERROR: [%s] rollback failed: %v", result.RunID, rbErr)
			}
		}
	}()

	created, err := tx.EnsureSchema(ctx)
	if err != nil {
		return result, fmt.Errorf("ensure schema: %w", err)
	}
	result.TableCreated = created
	if created {
		log.Printf("INFO: [%s] created table %s", result.RunID, TableName)
	}

	for _, obs := range observations {
		if s.debug {
			log.Printf("DEBUG: [%s] %s", result.RunID, InsertStatement(obs))
		}
		if err := tx.Insert(ctx, obs); err != nil {
			return result, fmt.Errorf("insert observation: %w", err)
		}
	}

	rows, err := tx.All(ctx)
	if err != nil {
		return result, fmt.Errorf("read observations: %w", err)
	}
	result.TotalRows = len(rows)

	if err := WriteRows(w, rows); err != nil {
		return result, fmt.Errorf("display observations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}
	committed = true

	log.Printf("INFO: [%s] stored %d observations for %s (%d rows total)", result.RunID, result.Fetched, result.Date, result.TotalRows)
	return result, nil
}

// Display writes every stored row to w in insertion order.
func (s *Service) Display(ctx context.Context, w io.Writer) error {
	rows, err := s.store.All(ctx)
	if err != nil {
		return err
	}
	return WriteRows(w, rows)
}

// Observations returns the stored rows, restricted to one applicable date
// when date is non-empty.
func (s *Service) Observations(ctx context.Context, date string) ([]Observation, error) {
	if date == "" {
		return s.store.All(ctx)
	}
	return s.store.ByDate(ctx, date)
}

// Summary aggregates the stored rows for date.
func (s *Service) Summary(ctx context.Context, date string) (DaySummary, error) {
	rows, err := s.store.ByDate(ctx, date)
	if err != nil {
		return DaySummary{}, err
	}
	if len(rows) == 0 {
		return DaySummary{}, ErrNoObservations
	}
	return Summarize(date, rows), nil
}

// DropTable removes the observation table and everything in it.
func (s *Service) DropTable(ctx context.Context) error {
	if err := s.store.Drop(ctx); err != nil {
		return err
	}
	log.Printf("INFO: dropped table %s", TableName)
	return nil
}

// WriteRows writes one line per observation, fields in column order
// separated by " | ", with NULL for null fields.
func WriteRows(w io.Writer, rows []Observation) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, FormatRow(row)); err != nil {
			return err
		}
	}
	return nil
}

// FormatRow renders one observation as a display line.
func FormatRow(o Observation) string {
	vals := o.Values()
	fields := make([]string, len(vals))
	for i, v := range vals {
		fields[i] = displayValue(v)
	}
	return strings.Join(fields, " | ")
}

func displayValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return formatValue(v)
}
