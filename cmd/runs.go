package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/repositories"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunsList prints or saves the import run ledger.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}

	db, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewImportRunRepository(db).List(ctx, map[string]any{
		"kind":   cmd.String("kind"),
		"status": cmd.String("status"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteReport(runs, format, output)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
		}
		r.logger.Info("report saved", "path", path, "runs", len(runs))
		return r.writePlain("✓ %d runs written to %s\n", len(runs), path)
	}

	data, err := formatter.Render(runs, format)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}
	return r.writePlain("%s", data)
}
