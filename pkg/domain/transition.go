package domain

import (
	"sort"
	"strings"
)

// DefaultClause marks the catch-all answer of a LOGIC node.
const DefaultClause = "DEFAULT"

// Answer is an outgoing, user-selectable edge of a QUESTION, VARIABLE or LOGIC node.
type Answer struct {
	ID     string `json:"id" yaml:"id"`
	NodeID string `json:"node_id" yaml:"node_id"`

	// Index defines display and evaluation order. Unique within a node.
	Index int `json:"index" yaml:"index"`

	// Text is either a literal answer, an answer template ({{ NAME = TYPE }})
	// or, for LOGIC nodes, the right-hand side of a condition.
	Text string `json:"text" yaml:"text"`

	// Successor is the target node id. Empty means none.
	Successor string `json:"successor,omitempty" yaml:"successor,omitempty"`
}

// HasSuccessor reports whether the answer leads anywhere.
func (a Answer) HasSuccessor() bool {
	return a.Successor != ""
}

// IsDefault reports whether the answer is the DEFAULT clause of a LOGIC node.
func (a Answer) IsDefault() bool {
	return strings.Contains(a.Text, DefaultClause)
}

// IsTemplate reports whether the answer text holds a {{ }} template.
func (a Answer) IsTemplate() bool {
	return strings.Contains(a.Text, "{{")
}

// SortAnswers orders answers by Index, keeping the authored order for ties.
func SortAnswers(answers []Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].Index < answers[j].Index
	})
}
