package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// UserRepository persists [models.User] rows in user_info.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user or replaces the profile fields of an existing row with the same id.
//
// ON CONFLICT ... DO UPDATE keeps the row in place; INSERT OR REPLACE would
// delete it first and trip the foreign keys of previously imported devices and trips.
func (r *UserRepository) Upsert(ctx context.Context, user models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO user_info (id, email, full_name, country, currency) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			full_name = excluded.full_name,
			country = excluded.country,
			currency = excluded.currency
	`

	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.FullName, user.Country, user.Currency); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// Get retrieves a user by id
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, full_name, country, currency FROM user_info WHERE id = ?`

	var (
		u                                  models.User
		email, fullName, country, currency sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &email, &fullName, &country, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.Email, u.FullName, u.Country, u.Currency = email.String, fullName.String, country.String, currency.String
	return &u, nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return CountRows(ctx, r.db, "user_info")
}
