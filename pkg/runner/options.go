package runner

import (
	"log/slog"

	"github.com/aretw0/diagraph/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithMatcher replaces the ExactMatcher.
func WithMatcher(m Matcher) Option {
	return func(r *Runner) {
		r.Matcher = m
	}
}

// WithUser sets the user the dialog runs for.
func WithUser(id string) Option {
	return func(r *Runner) {
		r.UserID = id
	}
}

// WithGraph sets the dialog graph.
func WithGraph(id string) Option {
	return func(r *Runner) {
		r.GraphID = id
	}
}

// WithBelief seeds the belief state of the first turn.
func WithBelief(b domain.BeliefState) Option {
	return func(r *Runner) {
		r.Belief = b
	}
}

// WithRestart resets the user's cursor before the first turn.
func WithRestart(restart bool) Option {
	return func(r *Runner) {
		r.Restart = restart
	}
}
