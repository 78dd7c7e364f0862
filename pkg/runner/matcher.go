package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/template"
)

// ErrNoMatch is returned when the input selects no answer of the current node.
var ErrNoMatch = errors.New("input matches no answer")

// Prompt describes the node waiting for input.
type Prompt struct {
	GraphID    string
	NodeID     string
	Candidates []string
	Belief     domain.BeliefState
}

// Matcher turns free text into user acts and the belief state to send with them.
type Matcher interface {
	Match(ctx context.Context, p Prompt, input string) ([]domain.UserAct, domain.BeliefState, error)
}

// ExactMatcher selects literal answers by case-insensitive text or by candidate
// number, and binds typed values for answer templates.
type ExactMatcher struct {
	Graphs ports.GraphStore
}

// NewExactMatcher creates a matcher reading answers from graphs.
func NewExactMatcher(graphs ports.GraphStore) *ExactMatcher {
	return &ExactMatcher{Graphs: graphs}
}

func (m *ExactMatcher) Match(ctx context.Context, p Prompt, input string) ([]domain.UserAct, domain.BeliefState, error) {
	belief := p.Belief.Clone()
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(p.Candidates) {
		input = p.Candidates[n-1]
	}

	node, err := m.Graphs.GetNode(ctx, p.GraphID, p.NodeID)
	if err != nil {
		return nil, belief, err
	}
	answers, err := m.Graphs.GetAnswers(ctx, p.GraphID, node)
	if err != nil {
		return nil, belief, err
	}

	for _, a := range answers {
		if !a.IsTemplate() && strings.EqualFold(strings.TrimSpace(a.Text), input) {
			return []domain.UserAct{{Type: domain.ActAnswer, Text: a.Text}}, belief, nil
		}
	}
	for _, a := range answers {
		if !a.IsTemplate() {
			continue
		}
		b, err := template.ParseBinding(a.Text)
		if err != nil {
			continue
		}
		value, ok := convert(b.Type, input)
		if !ok {
			return []domain.UserAct{{Type: domain.ActUnrecognizedValue, Slot: b.Name, Value: input}}, belief, nil
		}
		belief[b.Name] = value
		return []domain.UserAct{{Type: domain.ActAnswer, Text: a.Text}}, belief, nil
	}
	return nil, belief, fmt.Errorf("%w: %q", ErrNoMatch, input)
}

// convert parses input as a value of the declared variable type. TIMEPOINT
// and TIMESPAN values stay free text.
func convert(t template.VarType, input string) (any, bool) {
	switch t {
	case template.TypeNumber:
		f, err := strconv.ParseFloat(strings.ReplaceAll(input, ",", "."), 64)
		return f, err == nil
	case template.TypeBoolean:
		switch strings.ToLower(input) {
		case "yes", "y", "true", "ja", "1":
			return true, true
		case "no", "n", "false", "nein", "0":
			return false, true
		}
		return nil, false
	default:
		return input, input != ""
	}
}
