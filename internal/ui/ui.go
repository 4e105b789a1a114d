package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ImportView ViewState = iota
	ResultView
)

// Job is a long-running import that reports through progress.
//
// The job must not close progress.
type Job func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (any, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	title        string
	job          Job
	view         ViewState
	width        int
	height       int
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan jobCompleteMsg
	progress     tasks.ProgressUpdate
	phases       []phaseItem
	phaseList    list.Model
	result       any
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a model that runs job when the program starts.
func NewModel(ctx context.Context, title string, job Job) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		title:   title,
		job:     job,
		view:    ImportView,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Run starts a bubbletea program for job and returns the job's outcome once the user quits.
func Run(ctx context.Context, title string, job Job) (any, error) {
	m := NewModel(ctx, title, job)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("progress view failed: %w", err)
	}
	return m.Result()
}

// Result returns the job outcome. It is only meaningful once the model reached [ResultView].
func (m *Model) Result() (any, error) {
	return m.result, m.err
}

// Init starts the job and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startJob())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ResultView {
			m.phaseList.SetSize(max(msg.Width-4, 40), max(msg.Height-8, 10))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.view == ResultView {
				return m, tea.Quit
			}
			// The view switches to the result once the job observes cancellation.
			m.cancel()
			return m, nil
		}

	case spinner.TickMsg:
		if m.view != ImportView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.record(tasks.ProgressUpdate(msg))
		return m, m.waitForProgress()

	case jobCompleteMsg:
		m.cancel()
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.phaseList = m.newPhaseList()
		return m, nil
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.phaseList, cmd = m.phaseList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) startJob() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan jobCompleteMsg, 1)

	go func() {
		result, err := m.job(m.ctx, m.progressChan)
		m.done <- jobCompleteMsg{result: result, err: err}
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return <-m.done
		}
		return progressUpdateMsg(update)
	}
}

// record folds an update into the per-phase history.
func (m *Model) record(u tasks.ProgressUpdate) {
	m.progress = u
	for i := range m.phases {
		if m.phases[i].phase == u.Phase {
			m.phases[i].updates++
			m.phases[i].last = u.Message
			return
		}
	}
	m.phases = append(m.phases, phaseItem{phase: u.Phase, updates: 1, last: u.Message})
}

func (m *Model) newPhaseList() list.Model {
	items := make([]list.Item, len(m.phases))
	for i, p := range m.phases {
		items[i] = p
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = m.title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetSize(max(m.width-4, 40), max(m.height-8, 10))
	return l
}

func (m *Model) renderImport() string {
	title := styles.title.Render(m.title)

	var step string
	if m.progress.Total > 0 {
		step = fmt.Sprintf(" (%d/%d)", m.progress.Step, m.progress.Total)
	}

	msg := m.progress.Message
	if msg == "" {
		msg = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s %s%s\n", title, m.spinner.View(), msg, step)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s", RenderError(m.title, m.err), m.phaseList.View(), helpView)
	}

	status := styles.ok.Render("✓ " + m.progress.Message)
	return fmt.Sprintf("%s\n\n%s\n\n%s", status, m.phaseList.View(), helpView)
}
