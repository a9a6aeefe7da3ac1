// Package progress renders a live terminal view of a running reindex job.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// StateMsg carries a state transition of the observed job.
type StateMsg struct {
	State domain.ReindexState
}

// DoneMsg reports that the job returned.
type DoneMsg struct {
	State *domain.ReindexState
	Err   error
}

const maxBarWidth = 60

// Model is the bubbletea model of the progress view.
type Model struct {
	title  string
	styles Styles
	bar    progress.Model
	cancel func()

	state    domain.ReindexState
	started  bool
	done     bool
	err      error
	quitting bool
}

// Ensure Model implements tea.Model.
var _ tea.Model = Model{}

// New creates a progress model. cancel is called when the user interrupts.
func New(title string, cancel func()) Model {
	return Model{
		title:  title,
		styles: DefaultStyles(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = msg.State
		m.started = true
		return m, nil

	case DoneMsg:
		if msg.State != nil {
			m.state = *msg.State
		}
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")

	if !m.started && !m.done {
		b.WriteString(m.styles.Detail.Render("Planning..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.bar.ViewAs(m.state.Progress()))
	b.WriteString("\n")
	b.WriteString(m.styles.Detail.Render(m.detail()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Failed: " + m.err.Error()))
		b.WriteString("\n")
	case m.done && m.state.IsComplete:
		b.WriteString(m.styles.Success.Render("Done."))
		b.WriteString("\n")
	case m.quitting:
		b.WriteString(m.styles.Detail.Render("Stopping after the current step..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) detail() string {
	line := fmt.Sprintf("Step %d/%d", m.state.CurrentStep, m.state.TotalSteps)
	if f, ok := m.state.ActiveFetcher(); ok && !m.state.IsComplete {
		line += fmt.Sprintf("  %s %d/%d", f.Class, m.state.FetchOffset, f.TotalDocuments)
	}
	return line
}

// State returns the last observed state.
func (m Model) State() domain.ReindexState {
	return m.state
}

// Err returns the error the job finished with.
func (m Model) Err() error {
	return m.err
}
