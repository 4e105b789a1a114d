package shared

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDatabase is the path for a private in-memory database.
const MemoryDatabase = ":memory:"

// DefaultBusyTimeout is the lock wait, in milliseconds, used when none is configured.
const DefaultBusyTimeout = 5000

// DSN builds a go-sqlite3 data source name with foreign key enforcement enabled.
//
// Writers take the database lock at BEGIN (_txlock=immediate) so concurrent trip
// group transactions queue on the busy timeout instead of failing on lock upgrade.
func DSN(path string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = DefaultBusyTimeout
	}

	params := []string{
		"_foreign_keys=on",
		fmt.Sprintf("_busy_timeout=%d", busyTimeoutMS),
		"_txlock=immediate",
	}
	if path != MemoryDatabase {
		params = append(params, "_journal_mode=WAL")
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
// Returns an open database connection or an error if connection fails.
//
// In-memory databases are private to a connection, so the pool is pinned to one.
func NewDatabase(path string) (*sql.DB, error) {
	return OpenDatabase(path, DefaultBusyTimeout)
}

// OpenDatabase is [NewDatabase] with an explicit busy timeout.
func OpenDatabase(path string, busyTimeoutMS int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", DSN(path, busyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}

	if path == MemoryDatabase {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrOpenStore, err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Values <= 0 leave the driver defaults in place.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}
