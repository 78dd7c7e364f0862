package runner

import (
	"context"
	"testing"

	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactMatcher(t *testing.T) {
	loader, err := memory.NewFromNodes("g",
		domain.Node{ID: "start", Type: domain.NodeTypeStart, Successor: "q"},
		domain.Node{ID: "q", Type: domain.NodeTypeQuestion, Answers: []domain.Answer{
			{ID: "a", Index: 0, Text: "Red"},
			{ID: "b", Index: 1, Text: "Blue"},
		}},
		domain.Node{ID: "car", Type: domain.NodeTypeVariable, Answers: []domain.Answer{
			{ID: "c", Text: "{{ HAS_CAR = BOOLEAN }}"},
		}},
		domain.Node{ID: "price", Type: domain.NodeTypeVariable, Answers: []domain.Answer{
			{ID: "p", Text: "{{ PRICE = NUMBER }}"},
		}},
		domain.Node{ID: "when", Type: domain.NodeTypeVariable, Answers: []domain.Answer{
			{ID: "w", Text: "{{ WHEN = TIMEPOINT }}"},
		}},
	)
	require.NoError(t, err)
	m := NewExactMatcher(loader)
	ctx := context.Background()
	prompt := func(node string, candidates ...string) Prompt {
		return Prompt{GraphID: "g", NodeID: node, Candidates: candidates, Belief: domain.BeliefState{"KEEP": 1.0}}
	}

	tests := []struct {
		name   string
		prompt Prompt
		input  string
		act    domain.UserAct
		belief domain.BeliefState
	}{
		{"text ignores case", prompt("q", "Red", "Blue"), " blue ", domain.UserAct{Type: domain.ActAnswer, Text: "Blue"}, nil},
		{"candidate number", prompt("q", "Red", "Blue"), "1", domain.UserAct{Type: domain.ActAnswer, Text: "Red"}, nil},
		{"boolean", prompt("car", "yes", "no"), "2", domain.UserAct{Type: domain.ActAnswer, Text: "{{ HAS_CAR = BOOLEAN }}"}, domain.BeliefState{"HAS_CAR": false}},
		{"decimal comma", prompt("price"), "12,5", domain.UserAct{Type: domain.ActAnswer, Text: "{{ PRICE = NUMBER }}"}, domain.BeliefState{"PRICE": 12.5}},
		{"free text type", prompt("when"), "next monday", domain.UserAct{Type: domain.ActAnswer, Text: "{{ WHEN = TIMEPOINT }}"}, domain.BeliefState{"WHEN": "next monday"}},
		{"unparsable number", prompt("price"), "cheap", domain.UserAct{Type: domain.ActUnrecognizedValue, Slot: "PRICE", Value: "cheap"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acts, belief, err := m.Match(ctx, tt.prompt, tt.input)
			require.NoError(t, err)
			assert.Equal(t, []domain.UserAct{tt.act}, acts)
			assert.Equal(t, 1.0, belief["KEEP"])
			for k, v := range tt.belief {
				assert.Equal(t, v, belief[k])
			}
			assert.NotContains(t, tt.prompt.Belief, "HAS_CAR", "the prompt belief is not mutated")
		})
	}

	_, _, err = m.Match(ctx, prompt("q", "Red", "Blue"), "Green")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, _, err = m.Match(ctx, prompt("ghost"), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
