package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/repositories"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/desertthunder/tripx/internal/tasks"
	"github.com/desertthunder/tripx/internal/ui"
	"github.com/urfave/cli/v3"
)

// progressLogPath receives log output while the progress view owns the terminal.
const progressLogPath = "./tmp/tripx-progress.log"

// ImportDump imports an export dump given as the path argument.
func (r *Runner) ImportDump(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: dump path is required", shared.ErrMissingArgument)
	}

	workers := cmd.Int("workers")
	if workers < 0 {
		return fmt.Errorf("%w: --workers must not be negative", shared.ErrInvalidArgument)
	}
	if workers == 0 {
		workers = r.config.Import.Workers
	}

	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := r.importDump(ctx, db, path, workers, cmd.Bool("progress"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}
	return r.writeDumpSummary(path, summary)
}

// ImportAirports imports the airport directory given as the path argument.
func (r *Runner) ImportAirports(ctx context.Context, cmd *cli.Command) error {
	return r.importReferenceCommand(ctx, cmd, models.RunKindAirports)
}

// ImportAircraft imports the aircraft type feed given as the path argument.
func (r *Runner) ImportAircraft(ctx context.Context, cmd *cli.Command) error {
	return r.importReferenceCommand(ctx, cmd, models.RunKindAircraft)
}

// ImportAll imports both reference feeds and then the dump, using the paths in [sources].
//
// Reference feeds go first so a failed dump leaves usable lookup tables behind.
func (r *Runner) ImportAll(ctx context.Context, cmd *cli.Command) error {
	src := r.config.Sources
	if src.Dump == "" || src.Airports == "" || src.Aircraft == "" {
		return fmt.Errorf("%w: [sources] must name dump, airports, and aircraft", shared.ErrInvalidConfig)
	}

	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, ref := range []struct{ kind, path string }{
		{models.RunKindAirports, src.Airports},
		{models.RunKindAircraft, src.Aircraft},
	} {
		summary, err := r.importReference(ctx, db, ref.kind, ref.path)
		if err != nil {
			return err
		}
		if err := r.writeReferenceSummary(ref.kind, ref.path, summary); err != nil {
			return err
		}
	}

	summary, err := r.importDump(ctx, db, src.Dump, r.config.Import.Workers, false)
	if err != nil {
		return err
	}
	return r.writeDumpSummary(src.Dump, summary)
}

func (r *Runner) importReferenceCommand(ctx context.Context, cmd *cli.Command, kind string) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: %s feed path is required", shared.ErrMissingArgument, kind)
	}

	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := r.importReference(ctx, db, kind, path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}
	return r.writeReferenceSummary(kind, path, summary)
}

// importDump parses and writes the dump at path, recording the run in the ledger.
func (r *Runner) importDump(ctx context.Context, db *sql.DB, path string, workers int, progress bool) (*tasks.ImportSummary, error) {
	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	run := models.NewImportRun(models.RunKindDump, path)

	var summary *tasks.ImportSummary
	err = r.track(ctx, db, run, func() error {
		logger := r.logger
		if progress {
			fileLogger, closer, err := shared.NewFileLogger(progressLogPath)
			if err != nil {
				return err
			}
			defer closer.Close()
			logger = fileLogger
		}

		importer := tasks.NewDumpImporter(db, shared.WithLogger(logger, "run", run.ID), tasks.DumpImportOpts{
			Workers:         workers,
			WritesPerSecond: r.config.Import.WritesPerSecond,
		})

		var err error
		if progress {
			summary, err = runWithProgress(ctx, "Importing "+path, func(ctx context.Context, prog chan<- tasks.ProgressUpdate) (*tasks.ImportSummary, error) {
				return importer.ImportReader(ctx, f, prog)
			})
		} else {
			summary, err = importer.ImportReader(ctx, f, nil)
		}

		if summary != nil {
			run.Users, run.Devices, run.Trips, run.Flights, run.Dropped = summary.Users, summary.Devices, summary.Trips, summary.Flights, summary.Dropped
		}
		return err
	})
	return summary, err
}

// importReference loads one reference feed, recording the run in the ledger.
func (r *Runner) importReference(ctx context.Context, db *sql.DB, kind, path string) (*tasks.ReferenceSummary, error) {
	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	importer := tasks.NewReferenceImporter(r.logger)
	run := models.NewImportRun(kind, path)

	var summary *tasks.ReferenceSummary
	err = r.track(ctx, db, run, func() error {
		var err error
		switch kind {
		case models.RunKindAirports:
			summary, err = importer.ImportAirports(ctx, repositories.NewAirportRepository(db), f, nil)
			if summary != nil {
				run.Airports = summary.Imported
			}
		case models.RunKindAircraft:
			summary, err = importer.ImportAircraftTypes(ctx, repositories.NewAircraftTypeRepository(db), f, nil)
			if summary != nil {
				run.Aircraft = summary.Imported
			}
		default:
			err = fmt.Errorf("%w: unknown feed %q", shared.ErrInvalidArgument, kind)
		}
		if summary != nil {
			run.Dropped = summary.Skipped
		}
		return err
	})
	return summary, err
}

// runWithProgress runs job behind the progress view.
func runWithProgress[T any](ctx context.Context, title string, job func(context.Context, chan<- tasks.ProgressUpdate) (T, error)) (T, error) {
	result, err := ui.Run(ctx, title, func(ctx context.Context, prog chan<- tasks.ProgressUpdate) (any, error) {
		return job(ctx, prog)
	})

	out, _ := result.(T)
	return out, err
}

func openSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrOpenSource, err)
	}
	return f, nil
}

func (r *Runner) writeDumpSummary(path string, s *tasks.ImportSummary) error {
	return r.writePlain("%s", ui.RenderSummary("Dump imported: "+path, []ui.Count{
		{Label: "users", Value: s.Users},
		{Label: "devices", Value: s.Devices},
		{Label: "trips", Value: s.Trips},
		{Label: "flights", Value: s.Flights},
	}, ui.Count{Label: "dropped", Value: s.Dropped}))
}

func (r *Runner) writeReferenceSummary(kind, path string, s *tasks.ReferenceSummary) error {
	return r.writePlain("%s", ui.RenderSummary(fmt.Sprintf("%s imported: %s", kind, path), []ui.Count{
		{Label: kind, Value: s.Imported},
	}, ui.Count{Label: "skipped", Value: s.Skipped}))
}
