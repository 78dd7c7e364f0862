package domain

import (
	"fmt"
	"strings"
)

// NodeType is the behavioural role of a node in the dialog graph.
// The set is closed: every value below must be handled by the policy engine.
type NodeType int

const (
	// NodeTypeQuestion renders its markup and waits for the user to pick an answer.
	// It is the zero value so that untyped nodes behave like plain questions.
	NodeTypeQuestion NodeType = iota
	// NodeTypeStart marks the graph entry. It is never rendered.
	NodeTypeStart
	// NodeTypeInfo renders its markup and continues to its successor (soft step).
	NodeTypeInfo
	// NodeTypeVariable asks for a variable unless the belief state already holds it.
	NodeTypeVariable
	// NodeTypeUpdate mutates one belief state variable (silent step).
	NodeTypeUpdate
	// NodeTypeLogic branches on logic templates built from its text and answers (silent step).
	NodeTypeLogic
)

var nodeTypeNames = [...]string{
	NodeTypeQuestion: "QUESTION",
	NodeTypeStart:    "START",
	NodeTypeInfo:     "INFO",
	NodeTypeVariable: "VARIABLE",
	NodeTypeUpdate:   "UPDATE",
	NodeTypeLogic:    "LOGIC",
}

// Display names used by the graph editor. They double as utterance kinds.
var nodeTypeDisplay = [...]string{
	NodeTypeQuestion: "userResponseNode",
	NodeTypeStart:    "startNode",
	NodeTypeInfo:     "infoNode",
	NodeTypeVariable: "userInputNode",
	NodeTypeUpdate:   "variableUpdateNode",
	NodeTypeLogic:    "logicNode",
}

// NodeTypes lists every node type in declaration order.
func NodeTypes() []NodeType {
	return []NodeType{NodeTypeQuestion, NodeTypeStart, NodeTypeInfo, NodeTypeVariable, NodeTypeUpdate, NodeTypeLogic}
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// Display returns the editor name of the type (e.g. "infoNode").
func (t NodeType) Display() string {
	if t < 0 || int(t) >= len(nodeTypeDisplay) {
		return t.String()
	}
	return nodeTypeDisplay[t]
}

// ParseNodeType accepts the canonical names, the editor names and the legacy
// "RESPONSE" tag for questions. Matching is case-insensitive.
func ParseNodeType(s string) (NodeType, error) {
	clean := strings.TrimSpace(s)
	if strings.EqualFold(clean, "RESPONSE") {
		return NodeTypeQuestion, nil
	}
	for _, t := range NodeTypes() {
		if strings.EqualFold(clean, t.String()) || strings.EqualFold(clean, t.Display()) {
			return t, nil
		}
	}
	return NodeTypeQuestion, fmt.Errorf("unknown node type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(b []byte) error {
	parsed, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Position is the node location on the editor canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one step of the authored dialog graph.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Type NodeType `json:"type" yaml:"type"`

	// Text is the tag-free content. LOGIC nodes keep their left-hand fragment
	// here and UPDATE nodes their statement.
	Text string `json:"text" yaml:"text"`

	// Markup is the display content, possibly holding {{ }} templates.
	Markup string `json:"markup" yaml:"markup"`

	Position Position `json:"position" yaml:"position"`

	// Successor is the direct edge used by START, INFO and UPDATE nodes.
	// Empty means none.
	Successor string `json:"successor,omitempty" yaml:"successor,omitempty"`

	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Answers are ordered by Index.
	Answers []Answer `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// HasSuccessor reports whether the node has a direct successor edge.
func (n *Node) HasSuccessor() bool {
	return n.Successor != ""
}

// IsSink reports whether no edge leaves the node, neither direct nor through an answer.
func (n *Node) IsSink() bool {
	if n.HasSuccessor() {
		return false
	}
	for _, a := range n.Answers {
		if a.HasSuccessor() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so stores can hand out immutable snapshots.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Answers != nil {
		c.Answers = append([]Answer(nil), n.Answers...)
	}
	return &c
}
