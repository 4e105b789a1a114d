package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// ImportRunRepository tracks [models.ImportRun] ledger entries.
type ImportRunRepository struct {
	db DBTX
}

// NewImportRunRepository creates a new ImportRunRepository with the given database connection
func NewImportRunRepository(db DBTX) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

const importRunColumns = `
	id, kind, source, status, users, devices, trips, flights,
	airports, aircraft, dropped, error_message, started_at, completed_at
`

// Create inserts a new run with a generated ID
func (r *ImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	run.ID = shared.GenerateID()

	query := `INSERT INTO import_runs (` + importRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Kind,
		run.Source,
		run.Status,
		run.Users,
		run.Devices,
		run.Trips,
		run.Flights,
		run.Airports,
		run.Aircraft,
		run.Dropped,
		nullIfEmpty(run.ErrorMessage),
		run.StartedAt,
		run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import run: %w", err)
	}

	return nil
}

// Update records the run's status, counts and completion time
func (r *ImportRunRepository) Update(ctx context.Context, run *models.ImportRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE import_runs
		SET status = ?, users = ?, devices = ?, trips = ?, flights = ?,
			airports = ?, aircraft = ?, dropped = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.Users,
		run.Devices,
		run.Trips,
		run.Flights,
		run.Airports,
		run.Aircraft,
		run.Dropped,
		nullIfEmpty(run.ErrorMessage),
		run.CompletedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update import run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("import run not found: %s", run.ID)
	}

	return nil
}

// Get retrieves a run by ID
func (r *ImportRunRepository) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	query := `SELECT ` + importRunColumns + ` FROM import_runs WHERE id = ?`

	run, err := scanImportRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import run not found: %s", id)
	}
	return run, err
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "kind" (string), "status" (string), "limit" (int).
func (r *ImportRunRepository) List(ctx context.Context, criteria map[string]any) ([]*models.ImportRun, error) {
	query := `SELECT ` + importRunColumns + ` FROM import_runs WHERE 1 = 1`

	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY started_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ImportRun
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImportRun(row rowScanner) (*models.ImportRun, error) {
	var (
		run          models.ImportRun
		errorMessage sql.NullString
		startedAt    time.Time
		completedAt  sql.NullTime
	)

	err := row.Scan(
		&run.ID, &run.Kind, &run.Source, &run.Status,
		&run.Users, &run.Devices, &run.Trips, &run.Flights,
		&run.Airports, &run.Aircraft, &run.Dropped,
		&errorMessage, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import run: %w", err)
	}

	run.ErrorMessage = errorMessage.String
	run.StartedAt = startedAt
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}

	return &run, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
