package diagraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/diagraph/pkg/adapters/file"
	loamAdapter "github.com/aretw0/diagraph/pkg/adapters/loam"
	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/adapters/sqlite"
	"github.com/aretw0/diagraph/pkg/ports"
)

// OpenGraphStore picks a graph store for source:
//   - a directory is read as a Loam repository of node documents,
//   - .db, .sqlite and .sqlite3 files are opened as SQLite graph stores,
//   - .json, .yaml and .yml files are parsed as editor graph exports.
//
// The returned closer is nil when the store holds no resources.
func OpenGraphStore(ctx context.Context, source string, logger *slog.Logger) (ports.GraphStore, io.Closer, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, nil, fmt.Errorf("graph source: %w", err)
	}
	if info.IsDir() {
		l, err := loamAdapter.Open(source, loamAdapter.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return l, nil, nil
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".db", ".sqlite", ".sqlite3":
		s, err := sqlite.Open(ctx, source, sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		l, err := file.NewLoader([]string{source}, memory.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return l, nil, nil
	}
}
