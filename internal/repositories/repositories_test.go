package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	if err := NewUserRepository(db).Upsert(context.Background(), models.User{ID: id, Email: "a@example.com"}); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert & Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.User{ID: "u-1", Email: "a@example.com", FullName: "Ada", Country: "NO", Currency: "NOK"}

		if err := repo.Upsert(ctx, user); err != nil {
			t.Fatalf("failed to upsert user: %v", err)
		}

		got, err := repo.Get(ctx, "u-1")
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if *got != user {
			t.Errorf("expected %+v, got %+v", user, *got)
		}
	})

	t.Run("Upsert replaces profile", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)

		if err := repo.Upsert(ctx, models.User{ID: "u-1", Email: "old@example.com"}); err != nil {
			t.Fatalf("first upsert failed: %v", err)
		}
		if err := repo.Upsert(ctx, models.User{ID: "u-1", Email: "new@example.com"}); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}

		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 user, got %d", n)
		}

		got, _ := repo.Get(ctx, "u-1")
		if got.Email != "new@example.com" {
			t.Errorf("expected replaced email, got %s", got.Email)
		}
	})

	t.Run("Upsert with dependent rows", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		seedUser(t, db, "u-1")

		trip := &models.Trip{Ownership: "Ownership.PERSONAL", UserID: "u-1"}
		if err := NewTripRepository(db).Create(ctx, trip); err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}

		if err := repo.Upsert(ctx, models.User{ID: "u-1", FullName: "Again"}); err != nil {
			t.Errorf("re-upsert must not violate foreign keys of existing trips: %v", err)
		}
	})

	t.Run("Missing id", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if err := repo.Upsert(ctx, models.User{Email: "x@example.com"}); err == nil {
			t.Error("expected validation error for empty id")
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if _, err := repo.Get(ctx, "missing"); err == nil {
			t.Error("expected error for missing user")
		}
	})
}

func TestDeviceRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create & ListByUser", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "u-1")
		repo := NewDeviceRepository(db)

		devices := []*models.Device{
			{Name: "iPhone", App: "App", OS: "iOS", Version: "17", Country: nil, FirstSeen: "2024-01-01 10:00:00", LastSeen: "2024-02-01", UserID: "u-1"},
			{Name: "Pixel", App: "App", OS: "Android", Version: "14", Country: strPtr("NO"), FirstSeen: "2024-01-02", LastSeen: "2024-02-02", UserID: "u-1"},
		}
		for _, d := range devices {
			if err := repo.Create(ctx, d); err != nil {
				t.Fatalf("failed to create device: %v", err)
			}
			if d.ID == 0 {
				t.Error("device ID should be set after creation")
			}
		}

		got, err := repo.ListByUser(ctx, "u-1")
		if err != nil {
			t.Fatalf("failed to list devices: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 devices, got %d", len(got))
		}
		if got[0].Country != nil {
			t.Errorf("expected NULL country to round-trip as nil, got %q", *got[0].Country)
		}
		if got[0].FirstSeen != "2024-01-01 10:00:00" {
			t.Errorf("expected first_seen stored verbatim, got %q", got[0].FirstSeen)
		}
		if got[1].Country == nil || *got[1].Country != "NO" {
			t.Errorf("expected country NO, got %v", got[1].Country)
		}
	})

	t.Run("Unknown user violates foreign key", func(t *testing.T) {
		repo := NewDeviceRepository(setupTestDB(t))
		err := repo.Create(ctx, &models.Device{Name: "x", UserID: "nobody"})
		if err == nil || !strings.Contains(err.Error(), "FOREIGN KEY") {
			t.Errorf("expected foreign key error, got %v", err)
		}
	})
}

func TestTripAndFlightRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("Create trip then flights", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "u-1")
		trips := NewTripRepository(db)
		flights := NewFlightRepository(db)

		trip := &models.Trip{Ownership: "Ownership.PERSONAL", Origin: "OSL", Destination: "JFK", UserID: "u-1"}
		if err := trips.Create(ctx, trip); err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}
		if trip.ID == 0 {
			t.Fatal("trip ID should be set after creation")
		}

		f := &models.Flight{Seat: strPtr("12A"), Source: "SRC", AirlineCode: "SK", FlightNumber: "909", Origin: "OSL", Destination: "EWR", TripID: trip.ID}
		if err := flights.Create(ctx, f); err != nil {
			t.Fatalf("failed to create flight: %v", err)
		}

		got, err := flights.ListByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("failed to list flights: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 flight, got %d", len(got))
		}
		if got[0].Seat == nil || *got[0].Seat != "12A" || got[0].Aircraft != nil {
			t.Errorf("unexpected nullable fields: seat=%v aircraft=%v", got[0].Seat, got[0].Aircraft)
		}

		orphans, err := flights.Orphans(ctx)
		if err != nil {
			t.Fatalf("failed to count orphans: %v", err)
		}
		if orphans != 0 {
			t.Errorf("expected no orphan flights, got %d", orphans)
		}
	})

	t.Run("List with criteria", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "u-1")
		repo := NewTripRepository(db)

		for _, dest := range []string{"JFK", "BGO", "JFK"} {
			if err := repo.Create(ctx, &models.Trip{Origin: "OSL", Destination: dest, UserID: "u-1"}); err != nil {
				t.Fatalf("failed to create trip: %v", err)
			}
		}

		all, err := repo.List(ctx, map[string]any{})
		if err != nil {
			t.Fatalf("failed to list trips: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 trips, got %d", len(all))
		}

		jfk, err := repo.List(ctx, map[string]any{"destination": "JFK", "user_id": "u-1"})
		if err != nil {
			t.Fatalf("failed to list filtered trips: %v", err)
		}
		if len(jfk) != 2 {
			t.Errorf("expected 2 JFK trips, got %d", len(jfk))
		}
	})

	t.Run("Flight without trip id", func(t *testing.T) {
		repo := NewFlightRepository(setupTestDB(t))
		if err := repo.Create(ctx, &models.Flight{Source: "SRC"}); err == nil {
			t.Error("expected validation error for missing trip id")
		}
	})

	t.Run("Flight referencing missing trip", func(t *testing.T) {
		repo := NewFlightRepository(setupTestDB(t))
		err := repo.Create(ctx, &models.Flight{Source: "SRC", TripID: 42})
		if err == nil || !strings.Contains(err.Error(), "FOREIGN KEY") {
			t.Errorf("expected foreign key error, got %v", err)
		}
	})
}

func TestReferenceRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("Airport upsert is idempotent", func(t *testing.T) {
		repo := NewAirportRepository(setupTestDB(t))
		a := models.Airport{ID: "3682", Name: "Hartsfield", Latitude: 33.6367, Longitude: -84.428101, Continent: "NA", Country: "US", IATACode: "ATL"}

		for i := 0; i < 2; i++ {
			if err := repo.Upsert(ctx, a); err != nil {
				t.Fatalf("upsert %d failed: %v", i, err)
			}
		}

		n, _ := repo.Count(ctx)
		if n != 1 {
			t.Errorf("expected 1 airport, got %d", n)
		}

		got, err := repo.GetByIATA(ctx, "ATL")
		if err != nil {
			t.Fatalf("failed to get airport: %v", err)
		}
		if *got != a {
			t.Errorf("expected %+v, got %+v", a, *got)
		}
	})

	t.Run("Airport iata collision replaces", func(t *testing.T) {
		repo := NewAirportRepository(setupTestDB(t))
		if err := repo.Upsert(ctx, models.Airport{ID: "1", IATACode: "XXX", Name: "old"}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if err := repo.Upsert(ctx, models.Airport{ID: "2", IATACode: "XXX", Name: "new"}); err != nil {
			t.Fatalf("upsert with reused iata failed: %v", err)
		}

		n, _ := repo.Count(ctx)
		got, _ := repo.GetByIATA(ctx, "XXX")
		if n != 1 || got.ID != "2" {
			t.Errorf("expected single row with id 2, got count=%d row=%+v", n, got)
		}
	})

	t.Run("Aircraft type upsert", func(t *testing.T) {
		repo := NewAircraftTypeRepository(setupTestDB(t))

		if err := repo.Upsert(ctx, models.AircraftType{IATACode: "738", Manufacturer: "Boeing", Model: "737-800", WakeCategory: "M"}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if err := repo.Upsert(ctx, models.AircraftType{IATACode: "738", Manufacturer: "Boeing", Model: "737-800 (winglets)", WakeCategory: "M"}); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}

		got, err := repo.Get(ctx, "738")
		if err != nil {
			t.Fatalf("failed to get aircraft type: %v", err)
		}
		if got.Model != "737-800 (winglets)" {
			t.Errorf("expected updated model, got %s", got.Model)
		}

		if err := repo.Upsert(ctx, models.AircraftType{Manufacturer: "Nobody"}); err == nil {
			t.Error("expected validation error for empty iata code")
		}
	})
}

func TestImportRunRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create, Update & Get", func(t *testing.T) {
		repo := NewImportRunRepository(setupTestDB(t))

		run := models.NewImportRun(models.RunKindDump, "data.txt")
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" {
			t.Fatal("run ID should be set after creation")
		}

		run.Trips, run.Flights = 2, 5
		run.Complete()
		if err := repo.Update(ctx, run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status != models.RunStatusCompleted || got.Trips != 2 || got.Flights != 5 {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.CompletedAt == nil {
			t.Error("expected completed_at to be set")
		}
	})

	t.Run("Failed run keeps cause", func(t *testing.T) {
		repo := NewImportRunRepository(setupTestDB(t))

		run := models.NewImportRun(models.RunKindAirports, "airports.csv")
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		run.Fail(errors.New("constraint failed"))
		if err := repo.Update(ctx, run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		failed, err := repo.List(ctx, map[string]any{"status": models.RunStatusFailed})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(failed) != 1 || failed[0].ErrorMessage != "constraint failed" {
			t.Errorf("expected one failed run with cause, got %+v", failed)
		}
	})

	t.Run("List with kind and limit", func(t *testing.T) {
		repo := NewImportRunRepository(setupTestDB(t))
		for _, kind := range []string{models.RunKindDump, models.RunKindAircraft, models.RunKindDump} {
			if err := repo.Create(ctx, models.NewImportRun(kind, "src")); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		dumps, _ := repo.List(ctx, map[string]any{"kind": models.RunKindDump})
		if len(dumps) != 2 {
			t.Errorf("expected 2 dump runs, got %d", len(dumps))
		}

		limited, _ := repo.List(ctx, map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 run with limit, got %d", len(limited))
		}
	})

	t.Run("Invalid kind", func(t *testing.T) {
		repo := NewImportRunRepository(setupTestDB(t))
		if err := repo.Create(ctx, models.NewImportRun("bogus", "src")); err == nil {
			t.Error("expected validation error for unknown kind")
		}
	})

	t.Run("Update unknown run", func(t *testing.T) {
		repo := NewImportRunRepository(setupTestDB(t))
		run := models.NewImportRun(models.RunKindDump, "src")
		run.ID = "missing"
		if err := repo.Update(ctx, run); err == nil {
			t.Error("expected error updating unknown run")
		}
	})
}
