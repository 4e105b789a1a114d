package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// TripRepository appends [models.Trip] rows to trips.
type TripRepository struct {
	db DBTX
}

// NewTripRepository creates a new [TripRepository] with the given database connection
func NewTripRepository(db DBTX) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts the trip and sets its generated ID, which flights use as their foreign key.
func (r *TripRepository) Create(ctx context.Context, t *models.Trip) error {
	if t.UserID == "" {
		return fmt.Errorf("validation failed: trip has no user id")
	}

	query := `
		INSERT INTO trips (ownership, departure_time, arrival_time, origin, destination, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := insertID(ctx, r.db, query,
		t.Ownership,
		t.DepartureTime,
		t.ArrivalTime,
		t.Origin,
		t.Destination,
		t.CreatedAt,
		t.UpdatedAt,
		t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	t.ID = id
	return nil
}

// List retrieves trips matching the given criteria in insertion order.
//
// Supported criteria: "user_id" (string), "origin" (string), "destination" (string).
func (r *TripRepository) List(ctx context.Context, criteria map[string]any) ([]models.Trip, error) {
	query := `
		SELECT id, ownership, departure_time, arrival_time, origin, destination, created_at, updated_at, user_id
		FROM trips
		WHERE 1 = 1
	`

	args := []any{}
	for _, col := range []string{"user_id", "origin", "destination"} {
		if v, ok := criteria[col].(string); ok && v != "" {
			query += fmt.Sprintf(" AND %s = ?", col)
			args = append(args, v)
		}
	}

	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		err := rows.Scan(&t.ID, &t.Ownership, &t.DepartureTime, &t.ArrivalTime, &t.Origin, &t.Destination, &t.CreatedAt, &t.UpdatedAt, &t.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return trips, nil
}

// Count returns the number of trips.
func (r *TripRepository) Count(ctx context.Context) (int, error) {
	return CountRows(ctx, r.db, "trips")
}
