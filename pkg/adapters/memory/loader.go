package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/diagraph/pkg/domain"
)

// Loader implements ports.GraphStore over in-memory graphs.
// Safe for concurrent use; every read returns a copy.
type Loader struct {
	mu     sync.RWMutex
	graphs map[string]*domain.Graph
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for lookup warnings.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a store serving the given graphs.
func NewLoader(graphs []*domain.Graph, opts ...LoaderOption) *Loader {
	l := &Loader{
		graphs: make(map[string]*domain.Graph),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, g := range graphs {
		l.Put(g)
	}
	return l
}

// NewFromNodes creates a store with a single graph built from nodes.
// This improves DX for tests.
func NewFromNodes(graphID string, nodes ...domain.Node) (*Loader, error) {
	g := domain.NewGraph(graphID, graphID)
	for i := range nodes {
		if nodes[i].ID == "" {
			return nil, fmt.Errorf("node missing ID")
		}
		n := nodes[i]
		g.AddNode(&n)
	}
	return NewLoader([]*domain.Graph{g}), nil
}

// Put adds or replaces a graph.
func (l *Loader) Put(g *domain.Graph) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graphs[g.ID] = g
}

// Graph returns the stored graph. The result must not be mutated.
func (l *Loader) Graph(graphID string) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.graphs[graphID]
	if !ok {
		return nil, fmt.Errorf("graph %s: %w", graphID, domain.ErrNotFound)
	}
	return g, nil
}

// ListGraphs returns the ids of every stored graph.
func (l *Loader) ListGraphs(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.graphs))
	for id := range l.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetNode retrieves a copy of a node.
func (l *Loader) GetNode(ctx context.Context, graphID, nodeID string) (*domain.Node, error) {
	g, err := l.Graph(graphID)
	if err != nil {
		return nil, err
	}
	n, ok := g.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s in graph %s: %w", nodeID, graphID, domain.ErrNotFound)
	}
	return n.Clone(), nil
}

// GetSuccessor returns the direct successor of node, or nil when it has none.
func (l *Loader) GetSuccessor(ctx context.Context, graphID string, node *domain.Node) (*domain.Node, error) {
	if !node.HasSuccessor() {
		return nil, nil
	}
	return l.GetNode(ctx, graphID, node.Successor)
}

// GetAnswers returns the stored answers of node ordered by index.
func (l *Loader) GetAnswers(ctx context.Context, graphID string, node *domain.Node) ([]domain.Answer, error) {
	stored, err := l.GetNode(ctx, graphID, node.ID)
	if err != nil {
		return nil, err
	}
	domain.SortAnswers(stored.Answers)
	return stored.Answers, nil
}

// FirstNode returns the START node.
func (l *Loader) FirstNode(ctx context.Context, graphID string) (*domain.Node, error) {
	g, err := l.Graph(graphID)
	if err != nil {
		return nil, err
	}
	if g.FirstNodeID == "" {
		return nil, fmt.Errorf("start node of graph %s: %w", graphID, domain.ErrNotFound)
	}
	return l.GetNode(ctx, graphID, g.FirstNodeID)
}

// LookupTable queries a data table. Missing or empty tables yield no rows.
func (l *Loader) LookupTable(ctx context.Context, graphID, table string, constraints map[string]any, columns []string) ([]map[string]any, error) {
	g, err := l.Graph(graphID)
	if err != nil {
		return nil, err
	}
	t, ok := g.Tables[table]
	if !ok || len(t.Rows) == 0 {
		l.logger.Warn("data table missing or empty", "graph", graphID, "table", table)
		return nil, nil
	}
	return t.Lookup(constraints, columns), nil
}

// ListNodes returns copies of all nodes in id order.
func (l *Loader) ListNodes(ctx context.Context, graphID string) ([]domain.Node, error) {
	g, err := l.Graph(graphID)
	if err != nil {
		return nil, err
	}
	return g.SortedNodes(), nil
}
