package ports

import (
	"context"

	"github.com/aretw0/diagraph/pkg/domain"
)

// TurnRequest is the input of one dialog turn.
type TurnRequest struct {
	UserID  string             `json:"user_id"`
	GraphID string             `json:"graph_id"`
	Belief  domain.BeliefState `json:"belief_state"`
	Acts    []domain.UserAct   `json:"user_acts"`
}

// DialogEngine is the interface used by transports (e.g., HTTP, MCP, Lambda).
type DialogEngine interface {
	// HandleTurn runs one turn for a user. Graph problems are reported as
	// utterances; the error is reserved for infrastructure failures.
	HandleTurn(ctx context.Context, req TurnRequest) (*domain.TurnResult, error)

	// OnDialogStart resets the cursor of a user.
	OnDialogStart(ctx context.Context, userID string) error

	// PossibleAnswers lists the answer candidates of a node.
	PossibleAnswers(ctx context.Context, graphID, nodeID string, belief domain.BeliefState) ([]string, error)

	// Validate checks a graph for authoring errors.
	Validate(ctx context.Context, graphID string) (*domain.ValidationReport, error)
}
