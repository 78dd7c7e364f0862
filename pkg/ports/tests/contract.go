package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FixtureGraphID is the id of the graph returned by FixtureGraph.
const FixtureGraphID = "contract"

// FixtureGraph returns the graph every GraphStore adapter must serve back
// unchanged once loaded.
func FixtureGraph() *domain.Graph {
	g := domain.NewGraph(FixtureGraphID, "Contract")
	g.AddNode(&domain.Node{ID: "start", Type: domain.NodeTypeStart, Successor: "hello", Position: domain.Position{X: 0, Y: 0}})
	g.AddNode(&domain.Node{ID: "hello", Type: domain.NodeTypeInfo, Text: "Hello", Markup: "Hello {{ NAME }}", Successor: "ask", Tags: []string{"greeting"}})
	g.AddNode(&domain.Node{
		ID: "ask", Type: domain.NodeTypeQuestion, Text: "Continue?", Markup: "Continue?",
		Position: domain.Position{X: 10, Y: 20},
		Answers: []domain.Answer{
			{ID: "ask-no", Index: 1, Text: "no", Successor: "bye"},
			{ID: "ask-yes", Index: 0, Text: "yes", Successor: "bye"},
		},
	})
	g.AddNode(&domain.Node{ID: "bye", Type: domain.NodeTypeInfo, Text: "Bye", Markup: "Bye"})
	g.AddTable(&domain.DataTable{
		Name:    "Rates",
		Columns: []string{"country", "amount"},
		Rows: []map[string]any{
			{"country": "Germany", "amount": 28.0},
			{"country": "France", "amount": 40.0},
		},
	})
	return g
}

// GraphStoreContractTest is a reusable test suite that verifies if an adapter
// complies with ports.GraphStore. The store must already serve FixtureGraph.
func GraphStoreContractTest(t *testing.T, store ports.GraphStore) {
	t.Helper()
	ctx := context.Background()
	fixture := FixtureGraph()

	t.Run("GetNode_Success", func(t *testing.T) {
		for id, want := range fixture.Nodes {
			got, err := store.GetNode(ctx, FixtureGraphID, id)
			require.NoError(t, err, "node %s", id)
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.Type, got.Type, "type of %s", id)
			assert.Equal(t, want.Markup, got.Markup, "markup of %s", id)
			assert.Equal(t, want.Successor, got.Successor, "successor of %s", id)
			assert.Len(t, got.Answers, len(want.Answers), "answers of %s", id)
		}
	})

	t.Run("GetNode_NotFound", func(t *testing.T) {
		_, err := store.GetNode(ctx, FixtureGraphID, "non-existent-node")
		assert.True(t, errors.Is(err, domain.ErrNotFound), "expected ErrNotFound, got %v", err)

		_, err = store.GetNode(ctx, "non-existent-graph", "start")
		assert.True(t, errors.Is(err, domain.ErrNotFound), "expected ErrNotFound, got %v", err)
	})

	t.Run("GetNode_ReturnsSnapshot", func(t *testing.T) {
		n, err := store.GetNode(ctx, FixtureGraphID, "ask")
		require.NoError(t, err)
		n.Markup = "mutated"
		n.Answers[0].Text = "mutated"

		again, err := store.GetNode(ctx, FixtureGraphID, "ask")
		require.NoError(t, err)
		assert.Equal(t, "Continue?", again.Markup)
		assert.Equal(t, "yes", again.Answers[0].Text)
	})

	t.Run("FirstNode", func(t *testing.T) {
		n, err := store.FirstNode(ctx, FixtureGraphID)
		require.NoError(t, err)
		assert.Equal(t, "start", n.ID)
		assert.Equal(t, domain.NodeTypeStart, n.Type)
	})

	t.Run("GetSuccessor", func(t *testing.T) {
		start, err := store.GetNode(ctx, FixtureGraphID, "start")
		require.NoError(t, err)
		next, err := store.GetSuccessor(ctx, FixtureGraphID, start)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "hello", next.ID)

		bye, err := store.GetNode(ctx, FixtureGraphID, "bye")
		require.NoError(t, err)
		none, err := store.GetSuccessor(ctx, FixtureGraphID, bye)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("GetAnswers_Ordered", func(t *testing.T) {
		ask, err := store.GetNode(ctx, FixtureGraphID, "ask")
		require.NoError(t, err)
		answers, err := store.GetAnswers(ctx, FixtureGraphID, ask)
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, "ask-yes", answers[0].ID)
		assert.Equal(t, "yes", answers[0].Text)
		assert.Equal(t, "bye", answers[0].Successor)
		assert.Equal(t, "ask-no", answers[1].ID)
	})

	t.Run("LookupTable", func(t *testing.T) {
		rows, err := store.LookupTable(ctx, FixtureGraphID, "Rates", map[string]any{"country": "france"}, []string{"amount"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		amount, ok := domain.ToFloat(rows[0]["amount"])
		require.True(t, ok, "amount should be numeric, got %T", rows[0]["amount"])
		assert.Equal(t, 40.0, amount)

		rows, err = store.LookupTable(ctx, FixtureGraphID, "Missing", nil, nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("ListNodes", func(t *testing.T) {
		nodes, err := store.ListNodes(ctx, FixtureGraphID)
		require.NoError(t, err)
		ids := make([]string, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		assert.ElementsMatch(t, fixture.NodeIDs(), ids)
	})
}
