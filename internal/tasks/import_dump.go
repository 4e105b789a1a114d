package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/dump"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/repositories"
	"github.com/desertthunder/tripx/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 4
	maxWorkers     = 32
)

// DumpImportOpts contains configuration for the dump writer.
type DumpImportOpts struct {
	Workers         int     // Concurrent trip-group writers (default: 4)
	WritesPerSecond float64 // Trip groups submitted per second, 0 for unlimited
}

// ImportSummary reports what a dump import committed.
type ImportSummary struct {
	Users   int `json:"users"`
	Devices int `json:"devices"`
	Trips   int `json:"trips"`
	Flights int `json:"flights"`
	Dropped int `json:"dropped"`
}

// DumpImporter commits a parsed dump to the store in dependency order.
//
// The user row is written first, then devices, then every trip group. Each group runs in its own
// transaction: the trip is inserted, its generated id is read back, and the flights are inserted
// with that id. Groups run concurrently on a bounded pool; Import returns only after every
// dispatched group has committed or failed.
type DumpImporter struct {
	db     *sql.DB
	logger *log.Logger
	opts   DumpImportOpts
}

// NewDumpImporter creates a writer over db. The caller owns db and closes it after Import returns.
func NewDumpImporter(db *sql.DB, logger *log.Logger, opts DumpImportOpts) *DumpImporter {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	if opts.WritesPerSecond < 0 {
		opts.WritesPerSecond = 0
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DumpImporter{db: db, logger: logger, opts: opts}
}

// ImportReader parses r and imports the result.
func (d *DumpImporter) ImportReader(ctx context.Context, r io.Reader, progress chan<- ProgressUpdate) (*ImportSummary, error) {
	res, err := dump.Parse(r, d.logger)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, parsedDumpUpdate(res.Lines, len(res.Groups), res.Drops.Total()))
	d.logger.Info("parsed dump", "lines", res.Lines, "devices", len(res.Devices), "trips", len(res.Groups), "flights", res.Flights(), "dropped", res.Drops.Total())

	return d.Import(ctx, res, progress)
}

// Import writes res to the store.
//
// A dump without a user marker fails with [shared.ErrMissingUser] before anything is written.
// The first rejected write stops further dispatch and is returned wrapping [shared.ErrStoreWrite];
// groups committed before it stay committed. The returned summary counts committed rows, also on error.
func (d *DumpImporter) Import(ctx context.Context, res *dump.Result, progress chan<- ProgressUpdate) (*ImportSummary, error) {
	if res.User.ID == "" {
		return nil, shared.ErrMissingUser
	}

	summary := &ImportSummary{Dropped: res.Drops.Total()}

	if err := repositories.NewUserRepository(d.db).Upsert(ctx, res.User); err != nil {
		return summary, fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	summary.Users = 1
	sendProgress(progress, writeUserUpdate(res.User))

	devices := repositories.NewDeviceRepository(d.db)
	for i := range res.Devices {
		dev := res.Devices[i]
		dev.UserID = res.User.ID
		if err := devices.Create(ctx, &dev); err != nil {
			return summary, fmt.Errorf("%w: device %d: %w", shared.ErrStoreWrite, i+1, err)
		}
		summary.Devices++
		sendProgress(progress, writeDeviceUpdate(i+1, len(res.Devices), &dev))
	}

	trips, flights, err := d.writeGroups(ctx, res.User.ID, res.Groups, progress)
	summary.Trips, summary.Flights = trips, flights
	if err != nil {
		return summary, err
	}

	d.logger.Info("import complete", "users", summary.Users, "devices", summary.Devices, "trips", summary.Trips, "flights", summary.Flights)
	sendProgress(progress, finishedUpdate(summary))
	return summary, nil
}

// writeGroups dispatches every group to the worker pool and blocks until all of them finished.
func (d *DumpImporter) writeGroups(ctx context.Context, userID string, groups []models.TripGroup, progress chan<- ProgressUpdate) (int, int, error) {
	var (
		trips, flights, done atomic.Int64
		limiter              *rate.Limiter
	)

	if d.opts.WritesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.opts.WritesPerSecond), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	var dispatchErr error
	for i := range groups {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				dispatchErr = err
				break
			}
		}
		if gctx.Err() != nil {
			break
		}

		group := &groups[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			n, err := d.writeGroup(gctx, userID, i+1, group)
			if err != nil {
				d.logger.Error("trip group rejected", "group", i+1, "error", err)
				return err
			}

			trips.Add(1)
			flights.Add(int64(n))
			sendProgress(progress, writeTripUpdate(int(done.Add(1)), len(groups), group))
			return nil
		})
	}

	err := g.Wait()
	if err == nil && dispatchErr != nil {
		err = dispatchErr
	}
	if err == nil {
		err = ctx.Err()
	}
	return int(trips.Load()), int(flights.Load()), err
}

// writeGroup commits one trip and its flights atomically and returns the number of flights written.
func (d *DumpImporter) writeGroup(ctx context.Context, userID string, seq int, group *models.TripGroup) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: trip %d: failed to begin transaction: %w", shared.ErrStoreWrite, seq, err)
	}
	defer tx.Rollback()

	trip := group.Trip
	trip.UserID = userID
	if err := repositories.NewTripRepository(tx).Create(ctx, &trip); err != nil {
		return 0, fmt.Errorf("%w: trip %d: %w", shared.ErrStoreWrite, seq, err)
	}

	flights := repositories.NewFlightRepository(tx)
	for j := range group.Flights {
		f := group.Flights[j]
		f.TripID = trip.ID
		if err := flights.Create(ctx, &f); err != nil {
			return 0, fmt.Errorf("%w: trip %d flight %d: %w", shared.ErrStoreWrite, seq, j+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: trip %d: failed to commit: %w", shared.ErrStoreWrite, seq, err)
	}
	return len(group.Flights), nil
}
