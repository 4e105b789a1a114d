package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// DeviceRepository appends [models.Device] rows to device_info.
type DeviceRepository struct {
	db DBTX
}

// NewDeviceRepository creates a new [DeviceRepository] with the given database connection
func NewDeviceRepository(db DBTX) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Create inserts the device and sets its generated ID.
func (r *DeviceRepository) Create(ctx context.Context, d *models.Device) error {
	if d.UserID == "" {
		return fmt.Errorf("validation failed: device has no user id")
	}

	query := `
		INSERT INTO device_info (device_name, app_name, os, version, country, first_seen, last_seen, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := insertID(ctx, r.db, query, d.Name, d.App, d.OS, d.Version, d.Country, d.FirstSeen, d.LastSeen, d.UserID)
	if err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}

	d.ID = id
	return nil
}

// ListByUser returns the user's devices in insertion order.
func (r *DeviceRepository) ListByUser(ctx context.Context, userID string) ([]models.Device, error) {
	query := `
		SELECT id, device_name, app_name, os, version, country, first_seen, last_seen, user_id
		FROM device_info
		WHERE user_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var (
			d       models.Device
			country sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.App, &d.OS, &d.Version, &country, &d.FirstSeen, &d.LastSeen, &d.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.Country = stringPtr(country)
		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return devices, nil
}

// Count returns the number of devices.
func (r *DeviceRepository) Count(ctx context.Context) (int, error) {
	return CountRows(ctx, r.db, "device_info")
}
