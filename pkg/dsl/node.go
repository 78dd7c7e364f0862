package dsl

import (
	"fmt"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/template"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node domain.Node
}

// Start marks the node as the graph entry.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node.Type = domain.NodeTypeStart
	return n
}

// Info sets the markup and marks the node as an info node (soft step).
func (n *NodeBuilder) Info(markup string) *NodeBuilder {
	n.node.Type = domain.NodeTypeInfo
	n.setMarkup(markup)
	return n
}

// Question sets the markup and marks the node as a question node (hard step).
func (n *NodeBuilder) Question(markup string) *NodeBuilder {
	n.node.Type = domain.NodeTypeQuestion
	n.setMarkup(markup)
	return n
}

// Variable asks for name unless the belief state already holds it.
// The collected value continues to target.
func (n *NodeBuilder) Variable(markup, name string, typ template.VarType, target string) *NodeBuilder {
	n.node.Type = domain.NodeTypeVariable
	n.setMarkup(markup)
	return n.Answer(template.Binding{Name: name, Type: typ}.String(), target)
}

// Update makes the node assign a belief variable, e.g. "VISITS = VISITS + 1".
func (n *NodeBuilder) Update(statement string) *NodeBuilder {
	n.node.Type = domain.NodeTypeUpdate
	n.node.Text = statement
	return n
}

// Logic makes the node branch. lhs is the shared left-hand fragment,
// e.g. "{{ AGE", completed by each Branch.
func (n *NodeBuilder) Logic(lhs string) *NodeBuilder {
	n.node.Type = domain.NodeTypeLogic
	n.node.Text = lhs
	return n
}

// Go sets the direct successor used by START, INFO and UPDATE nodes.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.node.Successor = target
	return n
}

// Answer appends an answer. Indexes follow declaration order.
func (n *NodeBuilder) Answer(text, target string) *NodeBuilder {
	idx := len(n.node.Answers)
	n.node.Answers = append(n.node.Answers, domain.Answer{
		ID:        fmt.Sprintf("%s.%d", n.node.ID, idx),
		Index:     idx,
		Text:      text,
		Successor: target,
	})
	return n
}

// Branch appends the right-hand side of a LOGIC condition.
func (n *NodeBuilder) Branch(condition, target string) *NodeBuilder {
	return n.Answer(condition, target)
}

// Default appends the catch-all branch of a LOGIC node.
func (n *NodeBuilder) Default(target string) *NodeBuilder {
	return n.Answer(domain.DefaultClause, target)
}

// Tags appends node tags.
func (n *NodeBuilder) Tags(tags ...string) *NodeBuilder {
	n.node.Tags = append(n.node.Tags, tags...)
	return n
}

// At places the node on the editor canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Build returns a copy of the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return *n.node.Clone()
}

func (n *NodeBuilder) setMarkup(markup string) {
	n.node.Markup = markup
	n.node.Text = markup
}
