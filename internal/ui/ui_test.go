package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripx/internal/tasks"
)

// drive feeds the model its own commands until the job has reported completion.
func drive(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.startJob()
	for i := 0; m.view != ResultView; i++ {
		if i > 100 {
			t.Fatal("job never completed")
		}
		_, cmd = m.Update(cmd())
	}
}

func TestModel(t *testing.T) {
	t.Run("Job updates are folded per phase", func(t *testing.T) {
		m := NewModel(context.Background(), "Importing dump", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
			progress <- tasks.ProgressUpdate{Phase: tasks.WriteTrips, Step: 1, Total: 2, Message: "first"}
			progress <- tasks.ProgressUpdate{Phase: tasks.WriteTrips, Step: 2, Total: 2, Message: "second"}
			progress <- tasks.ProgressUpdate{Phase: tasks.Finished, Message: "Imported 2 trips"}
			return 42, nil
		})

		drive(t, m)

		result, err := m.Result()
		if err != nil || result != 42 {
			t.Fatalf("Result() = %v, %v", result, err)
		}
		if len(m.phases) != 2 {
			t.Fatalf("expected 2 phases, got %d", len(m.phases))
		}
		if m.phases[0].updates != 2 || m.phases[0].last != "second" {
			t.Errorf("unexpected trip phase: %+v", m.phases[0])
		}
		if view := m.View(); !strings.Contains(view, "Imported 2 trips") {
			t.Errorf("result view missing final message:\n%s", view)
		}
	})

	t.Run("Job failure is shown", func(t *testing.T) {
		m := NewModel(context.Background(), "Importing dump", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
			return nil, errors.New("store write rejected")
		})

		drive(t, m)

		if _, err := m.Result(); err == nil {
			t.Fatal("expected job error")
		}
		if view := m.View(); !strings.Contains(view, "store write rejected") {
			t.Errorf("result view missing error:\n%s", view)
		}
	})

	t.Run("Quit cancels a running job", func(t *testing.T) {
		m := NewModel(context.Background(), "Importing dump", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		cmd := m.startJob()
		_, quit := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if quit != nil {
			t.Error("quit during import should wait for the job")
		}

		m.Update(cmd())
		if m.view != ResultView {
			t.Fatal("expected result view after cancellation")
		}
		if _, err := m.Result(); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Import view shows step counters", func(t *testing.T) {
		m := NewModel(context.Background(), "Importing dump", nil)
		m.record(tasks.ProgressUpdate{Phase: tasks.WriteTrips, Step: 3, Total: 9, Message: "OSL → JFK"})

		view := m.View()
		if !strings.Contains(view, "OSL → JFK (3/9)") {
			t.Errorf("unexpected import view:\n%s", view)
		}
	})
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary("Dump imported", []Count{{"trips", 2}, {"flights", 5}}, Count{"dropped", 0}, Count{"skipped", 3})

	for _, want := range []string{"Dump imported", "trips", "5", "skipped", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("zero warn rows should be omitted:\n%s", out)
	}
}
