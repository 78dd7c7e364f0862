package runner

import (
	"testing"

	"github.com/aretw0/diagraph"
	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/stretchr/testify/require"
)

const testGraph = "age"

// ageGraph asks for the age, branches on it and says goodbye.
func ageGraph(t *testing.T) (*diagraph.Engine, *memory.Loader) {
	t.Helper()
	loader, err := memory.NewFromNodes(testGraph,
		domain.Node{ID: "start", Type: domain.NodeTypeStart, Successor: "age"},
		domain.Node{ID: "age", Type: domain.NodeTypeVariable, Markup: "How old are you?", Answers: []domain.Answer{
			{ID: "a1", Text: "{{ AGE = NUMBER }}", Successor: "check"},
		}},
		domain.Node{ID: "check", Type: domain.NodeTypeLogic, Text: "{{ AGE", Answers: []domain.Answer{
			{ID: "l1", Index: 0, Text: ">= 18 }}", Successor: "adult"},
			{ID: "l2", Index: 1, Text: "DEFAULT", Successor: "minor"},
		}},
		domain.Node{ID: "adult", Type: domain.NodeTypeQuestion, Markup: "Continue?", Answers: []domain.Answer{
			{ID: "y", Index: 0, Text: "yes", Successor: "bye"},
			{ID: "n", Index: 1, Text: "no", Successor: "bye"},
		}},
		domain.Node{ID: "minor", Type: domain.NodeTypeInfo, Markup: "Too young."},
		domain.Node{ID: "bye", Type: domain.NodeTypeInfo, Markup: "Bye at {{ AGE }}!"},
	)
	require.NoError(t, err)
	eng, err := diagraph.New("", diagraph.WithGraphStore(loader))
	require.NoError(t, err)
	return eng, loader
}
