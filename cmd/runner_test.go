package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/desertthunder/tripx/internal/tasks"
	tu "github.com/desertthunder/tripx/internal/testing"
)

const testDump = `user:u-7
devices:
Pixel;TripApp;Android;14;NO;2024-01-01;2024-02-01
settings:
full name: Grace Hopper
trips:
Ownership.PERSONAL;2024-01-01T08:00:00;2024-01-02T20:00:00;OSL;ATL;2023-12-01;2023-12-02
flights:
12A;x;ABC123;x;x;x;SRC;DL;47;333;OSL;ATL;2024-01-01T08:00:00;2024-01-01T16:00:00
broken;flight
`

const testAirports = `id,ident,type,name,latitude_deg,longitude_deg,elevation_ft,continent,iso_country,iso_region,municipality,scheduled_service,gps_code,iata_code,local_code
3682,KATL,large_airport,Atlanta,33.6367,-84.428101,1026,NA,US,US-GA,Atlanta,yes,KATL,ATL,ATL
6523,00A,heliport,Heliport,40.07,-74.93,11,NA,US,US-PA,Bensalem,no,K00A,,00A
`

const testAircraft = "IATA\tICAO\tManufacturer\tType/Model\tWake\n333\tA333\tAirbus\tA330-300\tH\n"

// testEnv is a temp directory holding a config file, a store path and the three source files.
type testEnv struct {
	dir      string
	config   string
	dump     string
	airports string
	aircraft string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()

	env := testEnv{
		dir:      dir,
		dump:     tu.MustWriteFile(t, dir, "data.txt", testDump),
		airports: tu.MustWriteFile(t, dir, "airports.csv", testAirports),
		aircraft: tu.MustWriteFile(t, dir, "aircraft.txt", testAircraft),
	}

	env.config = tu.MustWriteFile(t, dir, "config.toml", fmt.Sprintf(`[database]
path = %q

[import]
workers = 2

[sources]
dump = %q
airports = %q
aircraft = %q
`, filepath.Join(dir, "tripx.db"), env.dump, env.airports, env.aircraft))

	return env
}

// run executes the CLI with args and returns stdout.
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

	argv := append([]string{"tripx", "--config", e.config}, args...)
	err := newApp(runner).Run(context.Background(), argv)
	return output.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil dependencies uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "import", "runs"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("setup database", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.run(t, "setup", "database")
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if !strings.Contains(out, "Database ready") {
			t.Errorf("unexpected output: %q", out)
		}
		tu.AssertFileExists(t, filepath.Join(env.dir, "tripx.db"))
	})

	t.Run("setup creates missing config", func(t *testing.T) {
		dir := t.TempDir()
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		env := testEnv{dir: dir, config: filepath.Join(dir, "config.toml")}
		if _, err := env.run(t, "setup", "database"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		tu.AssertFileExists(t, env.config)
		if !strings.Contains(tu.MustReadFile(t, env.config), "[database]") {
			t.Error("expected config to be created from the template")
		}
	})

	t.Run("import dump", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.run(t, "import", "dump", "--json", env.dump)
		if err != nil {
			t.Fatalf("import dump failed: %v", err)
		}

		var summary tasks.ImportSummary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("failed to decode summary %q: %v", out, err)
		}
		want := tasks.ImportSummary{Users: 1, Devices: 1, Trips: 1, Flights: 1, Dropped: 1}
		if summary != want {
			t.Errorf("summary = %+v, want %+v", summary, want)
		}
	})

	t.Run("import dump plain summary", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.run(t, "import", "dump", "--workers", "1", env.dump)
		if err != nil {
			t.Fatalf("import dump failed: %v", err)
		}
		for _, want := range []string{"Dump imported", "flights", "dropped"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q: %q", want, out)
			}
		}
	})

	t.Run("import dump argument errors", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.run(t, "import", "dump"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := env.run(t, "import", "dump", "--workers=-1", env.dump); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := env.run(t, "import", "dump", filepath.Join(env.dir, "missing.txt")); !errors.Is(err, shared.ErrOpenSource) {
			t.Errorf("expected ErrOpenSource, got %v", err)
		}
	})

	t.Run("reference feeds", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.run(t, "import", "airports", "--json", env.airports)
		if err != nil {
			t.Fatalf("import airports failed: %v", err)
		}
		var summary tasks.ReferenceSummary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("failed to decode summary %q: %v", out, err)
		}
		if summary.Imported != 1 || summary.Skipped != 1 {
			t.Errorf("unexpected airport summary: %+v", summary)
		}

		out, err = env.run(t, "import", "aircraft", env.aircraft)
		if err != nil {
			t.Fatalf("import aircraft failed: %v", err)
		}
		if !strings.Contains(out, "aircraft imported") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("import all and runs list", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.run(t, "import", "all"); err != nil {
			t.Fatalf("import all failed: %v", err)
		}

		out, err := env.run(t, "runs", "list", "--json")
		if err != nil {
			t.Fatalf("runs list failed: %v", err)
		}

		var runs []models.ImportRun
		if err := json.Unmarshal([]byte(out), &runs); err != nil {
			t.Fatalf("failed to decode runs %q: %v", out, err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}

		kinds := map[string]models.ImportRun{}
		for _, run := range runs {
			if run.Status != models.RunStatusCompleted {
				t.Errorf("run %s: expected completed, got %s", run.Kind, run.Status)
			}
			kinds[run.Kind] = run
		}
		if kinds[models.RunKindDump].Flights != 1 || kinds[models.RunKindAirports].Airports != 1 || kinds[models.RunKindAircraft].Aircraft != 1 {
			t.Errorf("unexpected run counts: %+v", kinds)
		}
	})

	t.Run("failed run is recorded", func(t *testing.T) {
		env := newTestEnv(t)
		noUser := tu.MustWriteFile(t, env.dir, "nouser.txt", "trips:\nOwnership.X;a;b;c;d;e;f\n")

		if _, err := env.run(t, "import", "dump", noUser); !errors.Is(err, shared.ErrMissingUser) {
			t.Fatalf("expected ErrMissingUser, got %v", err)
		}

		out, err := env.run(t, "runs", "list", "--status", "failed")
		if err != nil {
			t.Fatalf("runs list failed: %v", err)
		}
		if !strings.Contains(out, "Import runs (1)") || !strings.Contains(out, shared.ErrMissingUser.Error()) {
			t.Errorf("expected the failed run with its cause, got:\n%s", out)
		}
	})

	t.Run("runs list report file", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.run(t, "import", "aircraft", env.aircraft); err != nil {
			t.Fatalf("import aircraft failed: %v", err)
		}

		report := filepath.Join(env.dir, "runs.csv")
		out, err := env.run(t, "runs", "list", "--format", "csv", "--output", report)
		if err != nil {
			t.Fatalf("runs list failed: %v", err)
		}
		if !strings.Contains(out, "1 runs written") {
			t.Errorf("unexpected output: %q", out)
		}
		if content := tu.MustReadFile(t, report); !strings.Contains(content, "aircraft") {
			t.Errorf("report missing run:\n%s", content)
		}

		if _, err := env.run(t, "runs", "list", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for unknown format, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		env := newTestEnv(t)
		env.config = tu.MustWriteFile(t, env.dir, "bad.toml", "[import]\nworkers = -2\n")

		if _, err := env.run(t, "runs", "list"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
