package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/diagraph/pkg/adapters/file"
	loamAdapter "github.com/aretw0/diagraph/pkg/adapters/loam"
	"github.com/aretw0/diagraph/pkg/adapters/sqlite"
	"github.com/aretw0/diagraph/pkg/adapters/tables"
	"github.com/aretw0/diagraph/pkg/domain"
)

// ConvertGraph reads a graph file, attaches the data tables found in
// tableFiles (CSV or XLSX) and writes the result to dest. The destination
// kind follows its extension: .db, .sqlite and .sqlite3 import into SQLite,
// .json, .yaml and .yml write a graph file, anything else is a Loam directory.
func ConvertGraph(ctx context.Context, graphFile, dest string, tableFiles []string, logger *slog.Logger) (*domain.Graph, error) {
	g, err := file.Load(graphFile)
	if err != nil {
		return nil, err
	}
	for _, path := range tableFiles {
		loaded, err := tables.Load(path)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", path, err)
		}
		for _, t := range loaded {
			if _, exists := g.Tables[t.Name]; exists {
				logger.Warn("table replaced by import", "graph", g.ID, "table", t.Name, "file", path)
			}
			g.AddTable(t)
		}
	}

	switch strings.ToLower(filepath.Ext(dest)) {
	case ".db", ".sqlite", ".sqlite3":
		err = toSQLite(ctx, dest, g, logger)
	case ".json", ".yaml", ".yml":
		err = file.Save(dest, g)
	default:
		err = toLoam(ctx, dest, g, logger)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("graph converted", "graph", g.ID, "nodes", len(g.Nodes), "tables", len(g.Tables), "dest", dest)
	return g, nil
}

func toSQLite(ctx context.Context, path string, g *domain.Graph, logger *slog.Logger) error {
	store, err := sqlite.Open(ctx, path, sqlite.WithLogger(logger))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Import(ctx, g); err != nil {
		return fmt.Errorf("import %s: %w", g.ID, err)
	}
	return nil
}

func toLoam(ctx context.Context, dir string, g *domain.Graph, logger *slog.Logger) error {
	repo, err := loamAdapter.Create(dir, loamAdapter.WithLogger(logger))
	if err != nil {
		return err
	}
	return repo.Save(ctx, g)
}
