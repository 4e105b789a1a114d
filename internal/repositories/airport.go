package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// AirportRepository persists the airport directory.
type AirportRepository struct {
	db DBTX
}

// NewAirportRepository creates a new [AirportRepository] with the given database connection
func NewAirportRepository(db DBTX) *AirportRepository {
	return &AirportRepository{db: db}
}

// Upsert inserts or replaces an airport by its source id.
//
// INSERT OR REPLACE also resolves an iata_code collision with a different id,
// which ON CONFLICT(id) cannot; nothing references airports by foreign key.
func (r *AirportRepository) Upsert(ctx context.Context, a models.Airport) error {
	if a.ID == "" || a.IATACode == "" {
		return fmt.Errorf("validation failed: airport requires id and iata code")
	}

	query := `
		INSERT OR REPLACE INTO airports (id, name, latitude_deg, longitude_deg, continent, country, iata_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, a.ID, a.Name, a.Latitude, a.Longitude, a.Continent, a.Country, a.IATACode)
	if err != nil {
		return fmt.Errorf("failed to upsert airport %s: %w", a.IATACode, err)
	}

	return nil
}

// GetByIATA retrieves an airport by IATA code.
func (r *AirportRepository) GetByIATA(ctx context.Context, code string) (*models.Airport, error) {
	query := `
		SELECT id, name, latitude_deg, longitude_deg, continent, country, iata_code
		FROM airports
		WHERE iata_code = ?
	`

	var a models.Airport
	err := r.db.QueryRowContext(ctx, query, code).Scan(&a.ID, &a.Name, &a.Latitude, &a.Longitude, &a.Continent, &a.Country, &a.IATACode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("airport not found: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query airport: %w", err)
	}

	return &a, nil
}

// Count returns the number of airports.
func (r *AirportRepository) Count(ctx context.Context) (int, error) {
	return CountRows(ctx, r.db, "airports")
}
