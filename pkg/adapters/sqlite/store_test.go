package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/diagraph/pkg/adapters/sqlite"
	"github.com/aretw0/diagraph/pkg/domain"
	contract "github.com/aretw0/diagraph/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "db", "graphs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Import(context.Background(), contract.FixtureGraph()))
	contract.GraphStoreContractTest(t, store)
}

func TestSQLiteStore_RoundTripsDetails(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, contract.FixtureGraph()))

	hello, err := store.GetNode(ctx, contract.FixtureGraphID, "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting"}, hello.Tags)
	assert.Equal(t, "Hello", hello.Text)

	ask, err := store.GetNode(ctx, contract.FixtureGraphID, "ask")
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, ask.Position)
	assert.Equal(t, "ask", ask.Answers[0].NodeID)

	graphs, err := store.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{contract.FixtureGraphID}, graphs)
}

func TestSQLiteStore_ImportReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, contract.FixtureGraph()))

	g := domain.NewGraph(contract.FixtureGraphID, "Smaller")
	g.AddNode(&domain.Node{ID: "start", Type: domain.NodeTypeStart, Successor: "only"})
	g.AddNode(&domain.Node{ID: "only", Markup: "Only"})
	require.NoError(t, store.Import(ctx, g))

	nodes, err := store.ListNodes(ctx, contract.FixtureGraphID)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "only", nodes[0].ID)

	rows, err := store.LookupTable(ctx, contract.FixtureGraphID, "Rates", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows, "tables of the replaced graph are gone")
}

func TestSQLiteStore_UnknownGraph(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.FirstNode(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.ListNodes(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
