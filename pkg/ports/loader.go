package ports

import (
	"context"

	"github.com/aretw0/diagraph/pkg/domain"
)

// GraphStore defines how the engine retrieves dialog graphs.
// Implementations hand out copies: callers may not observe later mutations.
type GraphStore interface {
	// GetNode returns a snapshot of a node. Unknown graphs or nodes wrap domain.ErrNotFound.
	GetNode(ctx context.Context, graphID, nodeID string) (*domain.Node, error)

	// GetSuccessor returns the direct successor of node, or (nil, nil) when it has none.
	GetSuccessor(ctx context.Context, graphID string, node *domain.Node) (*domain.Node, error)

	// GetAnswers returns the answers of node ordered by index.
	GetAnswers(ctx context.Context, graphID string, node *domain.Node) ([]domain.Answer, error)

	// FirstNode returns the START node of the graph.
	FirstNode(ctx context.Context, graphID string) (*domain.Node, error)

	// LookupTable returns the rows of a data table matching every constraint,
	// projected on columns. A missing or empty table yields no rows and no error.
	LookupTable(ctx context.Context, graphID, table string, constraints map[string]any, columns []string) ([]map[string]any, error)

	// ListNodes returns every node of the graph in a stable order.
	// This is used for validation and visualization tools (e.g. 'diagraph graph').
	ListNodes(ctx context.Context, graphID string) ([]domain.Node, error)
}

// GraphLister is implemented by stores that can enumerate their graphs.
type GraphLister interface {
	ListGraphs(ctx context.Context) ([]string, error)
}
