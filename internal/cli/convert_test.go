package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/pkg/adapters/file"
	loamAdapter "github.com/aretw0/diagraph/pkg/adapters/loam"
	"github.com/aretw0/diagraph/pkg/adapters/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricesCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("drink;price\ntea;2\ncoffee;3\n"), 0o644))
	return path
}

func TestConvertGraph_SQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "graphs.db")

	g, err := ConvertGraph(ctx, writeShop(t), dbPath, []string{pricesCSV(t)}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "shop", g.ID)
	assert.Contains(t, g.Tables, "Prices")

	store, err := sqlite.Open(ctx, dbPath)
	require.NoError(t, err)
	defer store.Close()

	ids, err := store.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, ids)

	rows, err := store.LookupTable(ctx, "shop", "Prices", map[string]any{"drink": "coffee"}, []string{"price"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0]["price"])
}

func TestConvertGraph_File(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "shop.yaml")
	_, err := ConvertGraph(context.Background(), writeShop(t), dest, nil, logging.NewNop())
	require.NoError(t, err)

	g, err := file.Load(dest)
	require.NoError(t, err)
	assert.Equal(t, "start", g.FirstNodeID)
	assert.Len(t, g.Nodes, 3)
}

func TestConvertGraph_Loam(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "shop")

	_, err := ConvertGraph(ctx, writeShop(t), dir, []string{pricesCSV(t)}, logging.NewNop())
	require.NoError(t, err)

	loader, err := loamAdapter.Open(dir)
	require.NoError(t, err)
	first, err := loader.FirstNode(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, "start", first.ID)

	rows, err := loader.LookupTable(ctx, "shop", "Prices", map[string]any{"drink": "tea"}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestConvertGraph_BadTable(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))

	_, err := ConvertGraph(context.Background(), writeShop(t), filepath.Join(t.TempDir(), "g.db"), []string{bad}, logging.NewNop())
	assert.Error(t, err)
}
