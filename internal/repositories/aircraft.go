package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// AircraftTypeRepository persists aircraft type codes in airplanes.
type AircraftTypeRepository struct {
	db DBTX
}

// NewAircraftTypeRepository creates a new [AircraftTypeRepository] with the given database connection
func NewAircraftTypeRepository(db DBTX) *AircraftTypeRepository {
	return &AircraftTypeRepository{db: db}
}

// Upsert inserts the aircraft type or updates the row with the same IATA code.
func (r *AircraftTypeRepository) Upsert(ctx context.Context, a models.AircraftType) error {
	if a.IATACode == "" {
		return fmt.Errorf("validation failed: aircraft type requires iata code")
	}

	query := `
		INSERT INTO airplanes (iata_code, manufacturer, model, wake_category) VALUES (?, ?, ?, ?)
		ON CONFLICT(iata_code) DO UPDATE SET
			manufacturer = excluded.manufacturer,
			model = excluded.model,
			wake_category = excluded.wake_category
	`

	if _, err := r.db.ExecContext(ctx, query, a.IATACode, a.Manufacturer, a.Model, a.WakeCategory); err != nil {
		return fmt.Errorf("failed to upsert aircraft type %s: %w", a.IATACode, err)
	}

	return nil
}

// Get retrieves an aircraft type by IATA code.
func (r *AircraftTypeRepository) Get(ctx context.Context, code string) (*models.AircraftType, error) {
	query := `SELECT iata_code, manufacturer, model, wake_category FROM airplanes WHERE iata_code = ?`

	var a models.AircraftType
	err := r.db.QueryRowContext(ctx, query, code).Scan(&a.IATACode, &a.Manufacturer, &a.Model, &a.WakeCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("aircraft type not found: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft type: %w", err)
	}

	return &a, nil
}

// Count returns the number of aircraft types.
func (r *AircraftTypeRepository) Count(ctx context.Context) (int, error) {
	return CountRows(ctx, r.db, "airplanes")
}
