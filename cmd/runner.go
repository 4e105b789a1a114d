package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/repositories"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, runsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config when it exists and applies --verbose.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if r.configPath == "" {
		return ctx, nil
	}

	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		return ctx, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// openStore opens the configured database and brings its schema up to date.
func (r *Runner) openStore(ctx context.Context) (*sql.DB, error) {
	cfg := r.config.Database

	db, err := shared.OpenDatabase(cfg.Path, cfg.BusyTimeoutMS)
	if err != nil {
		return nil, err
	}
	if cfg.Path != shared.MemoryDatabase {
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}

	if err := shared.RunMigrationsContext(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", shared.ErrOpenStore, err)
	}
	return db, nil
}

// track records run in the import ledger around fn, marking it completed or failed with fn's error.
func (r *Runner) track(ctx context.Context, db *sql.DB, run *models.ImportRun, fn func() error) error {
	runs := repositories.NewImportRunRepository(db)
	if err := runs.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}

	logger := shared.WithLogger(r.logger, "run", run.ID, "kind", run.Kind)
	logger.Info("import started", "source", run.Source)

	runErr := fn()
	if runErr != nil {
		run.Fail(runErr)
		logger.Error("import failed", "error", runErr)
	} else {
		run.Complete()
		logger.Info("import completed")
	}

	if err := runs.Update(context.WithoutCancel(ctx), run); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to update import run: %w", err))
	}
	return runErr
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
