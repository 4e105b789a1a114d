package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// FlightRepository appends [models.Flight] rows to flights.
type FlightRepository struct {
	db DBTX
}

// NewFlightRepository creates a new [FlightRepository] with the given database connection
func NewFlightRepository(db DBTX) *FlightRepository {
	return &FlightRepository{db: db}
}

// Create inserts the flight and sets its generated ID. TripID must name a committed trip.
func (r *FlightRepository) Create(ctx context.Context, f *models.Flight) error {
	if f.TripID <= 0 {
		return fmt.Errorf("validation failed: flight has no trip id")
	}

	query := `
		INSERT INTO flights (
			seat, booking_reference, source, airline_code, flight_number, aircraft,
			origin, destination, departure_time, arrival_time,
			local_departure_time, local_arrival_time, created_at, trip_id
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := insertID(ctx, r.db, query,
		f.Seat,
		f.BookingReference,
		f.Source,
		f.AirlineCode,
		f.FlightNumber,
		f.Aircraft,
		f.Origin,
		f.Destination,
		f.DepartureTime,
		f.ArrivalTime,
		f.LocalDepartureTime,
		f.LocalArrivalTime,
		f.CreatedAt,
		f.TripID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flight: %w", err)
	}

	f.ID = id
	return nil
}

// ListByTrip returns the flights of a trip in insertion order.
func (r *FlightRepository) ListByTrip(ctx context.Context, tripID int64) ([]models.Flight, error) {
	query := `
		SELECT
			id, seat, booking_reference, source, airline_code, flight_number, aircraft,
			origin, destination, departure_time, arrival_time,
			local_departure_time, local_arrival_time, created_at, trip_id
		FROM flights
		WHERE trip_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return flights, nil
}

// Orphans returns the number of flights whose trip_id names no trip. It is zero after any successful import.
func (r *FlightRepository) Orphans(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*) FROM flights f
		LEFT JOIN trips t ON t.id = f.trip_id
		WHERE t.id IS NULL
	`

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orphan flights: %w", err)
	}
	return n, nil
}

// Count returns the number of flights.
func (r *FlightRepository) Count(ctx context.Context) (int, error) {
	return CountRows(ctx, r.db, "flights")
}

func scanFlight(rows *sql.Rows) (models.Flight, error) {
	var (
		f                                     models.Flight
		seat, booking, aircraft               sql.NullString
		localDeparture, localArrival, created sql.NullString
	)

	err := rows.Scan(
		&f.ID, &seat, &booking, &f.Source, &f.AirlineCode, &f.FlightNumber, &aircraft,
		&f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime,
		&localDeparture, &localArrival, &created, &f.TripID,
	)
	if err != nil {
		return f, fmt.Errorf("failed to scan flight: %w", err)
	}

	f.Seat = stringPtr(seat)
	f.BookingReference = stringPtr(booking)
	f.Aircraft = stringPtr(aircraft)
	f.LocalDepartureTime = stringPtr(localDeparture)
	f.LocalArrivalTime = stringPtr(localArrival)
	f.CreatedAt = stringPtr(created)

	return f, nil
}
