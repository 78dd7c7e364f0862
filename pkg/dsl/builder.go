package dsl

import (
	"fmt"

	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	graph *domain.Graph
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a builder for a graph.
func New(graphID, name string) *Builder {
	return &Builder{
		graph: domain.NewGraph(graphID, name),
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.Node{ID: id}}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Table attaches a lookup table. Each row is keyed by column name.
func (b *Builder) Table(name string, columns []string, rows ...map[string]any) *Builder {
	b.graph.AddTable(&domain.DataTable{Name: name, Columns: columns, Rows: rows})
	return b
}

// Graph assembles the domain graph. Nodes are added in declaration order,
// so the first START node declared becomes the entry node.
func (b *Builder) Graph() (*domain.Graph, error) {
	g := domain.NewGraph(b.graph.ID, b.graph.Name)
	for name, t := range b.graph.Tables {
		g.Tables[name] = t
	}
	for _, id := range b.order {
		n := b.nodes[id].Build()
		if err := b.checkEdges(&n); err != nil {
			return nil, err
		}
		g.AddNode(&n)
	}
	return g, nil
}

// Build compiles the graph into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	g, err := b.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to build graph %s: %w", b.graph.ID, err)
	}
	return memory.NewLoader([]*domain.Graph{g}), nil
}

func (b *Builder) checkEdges(n *domain.Node) error {
	if n.HasSuccessor() {
		if _, ok := b.nodes[n.Successor]; !ok {
			return fmt.Errorf("node %q leads to unknown node %q", n.ID, n.Successor)
		}
	}
	for _, a := range n.Answers {
		if !a.HasSuccessor() {
			continue
		}
		if _, ok := b.nodes[a.Successor]; !ok {
			return fmt.Errorf("answer %q of node %q leads to unknown node %q", a.ID, n.ID, a.Successor)
		}
	}
	return nil
}
