package progress

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
)

// RunFunc executes a reindex job under ctx. The context carries the
// observer that feeds the view.
type RunFunc func(ctx context.Context) (*domain.ReindexState, error)

// Run executes fn while rendering its progress. Interrupting the view
// cancels the job context; the job stops after its current step.
func Run(ctx context.Context, in io.Reader, out io.Writer, title string, fn RunFunc) (*domain.ReindexState, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(New(title, cancel), tea.WithInput(in), tea.WithOutput(out))

	type result struct {
		state *domain.ReindexState
		err   error
	}
	results := make(chan result, 1)
	go func() {
		observed := driving.WithObserver(ctx, func(s domain.ReindexState) {
			program.Send(StateMsg{State: s})
		})
		state, err := fn(observed)
		program.Send(DoneMsg{State: state, Err: err})
		results <- result{state: state, err: err}
	}()

	_, viewErr := program.Run()
	res := <-results
	if viewErr != nil && !errors.Is(viewErr, tea.ErrProgramKilled) {
		return res.state, errors.Join(res.err, viewErr)
	}
	return res.state, res.err
}
