package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
)

// DefaultUser is the user id of interactive sessions.
const DefaultUser = "cli"

// Runner handles the chat loop of a dialog engine using the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Engine  ports.DialogEngine
	Handler IOHandler
	Matcher Matcher

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	UserID  string
	GraphID string
	Belief  domain.BeliefState
	Restart bool
}

// NewRunner creates a Runner on Stdin/Stdout with an ExactMatcher over graphs.
func NewRunner(engine ports.DialogEngine, graphs ports.GraphStore, opts ...Option) *Runner {
	r := &Runner{
		Engine:  engine,
		Handler: NewTextHandler(os.Stdin, os.Stdout),
		Matcher: NewExactMatcher(graphs),
		Logger:  logging.NewNop(),
		UserID:  DefaultUser,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the dialog until the graph ends, the input is exhausted or the
// user types "exit". It returns the last turn result.
func (r *Runner) Run(ctx context.Context) (*domain.TurnResult, error) {
	if r.Restart {
		if err := r.Engine.OnDialogStart(ctx, r.UserID); err != nil {
			return nil, fmt.Errorf("restart dialog: %w", err)
		}
	}

	belief := r.Belief
	if belief == nil {
		belief = domain.NewBeliefState()
	}
	var acts []domain.UserAct

	for {
		res, err := r.Engine.HandleTurn(ctx, ports.TurnRequest{
			UserID:  r.UserID,
			GraphID: r.GraphID,
			Belief:  belief,
			Acts:    acts,
		})
		if err != nil {
			return nil, fmt.Errorf("turn error: %w", err)
		}
		if err := r.Handler.Output(ctx, res); err != nil {
			return res, fmt.Errorf("output error: %w", err)
		}
		r.Logger.Debug("turn handled", "user", r.UserID, "node", res.NodeID, "turn", res.Turn, "outcome", res.Outcome)
		if res.Terminal {
			return res, nil
		}

		belief = res.Belief
		acts, belief, err = r.read(ctx, res, belief)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return res, nil
			}
			return res, err
		}
	}
}

// read prompts until the input matches an answer of the waiting node.
func (r *Runner) read(ctx context.Context, res *domain.TurnResult, belief domain.BeliefState) ([]domain.UserAct, domain.BeliefState, error) {
	prompt := Prompt{GraphID: r.GraphID, NodeID: res.NodeID, Candidates: res.Candidates, Belief: belief}
	for {
		input, err := r.Handler.Input(ctx)
		if err != nil {
			return nil, belief, err
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil, belief, io.EOF
		}
		acts, next, err := r.Matcher.Match(ctx, prompt, input)
		if errors.Is(err, ErrNoMatch) {
			msg := "Please answer with one of: " + strings.Join(res.Candidates, ", ")
			if len(res.Candidates) == 0 {
				msg = "That answer is not available here."
			}
			if err := r.Handler.SystemOutput(ctx, msg); err != nil {
				return nil, belief, err
			}
			continue
		}
		if err != nil {
			return nil, belief, fmt.Errorf("match input: %w", err)
		}
		return acts, next, nil
	}
}
