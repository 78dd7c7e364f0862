package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/diagraph/pkg/domain"

	_ "modernc.org/sqlite"
)

// Store implements ports.GraphStore on a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for lookup warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens (creating if needed) the database at path and ensures the schema.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases and foreign keys consistent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import stores g, replacing any graph with the same id.
func (s *Store) Import(ctx context.Context, g *domain.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM graphs WHERE id = ?`, g.ID); err != nil {
		return fmt.Errorf("delete graph %s: %w", g.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO graphs (id, name, first_node) VALUES (?, ?, ?)`,
		g.ID, g.Name, g.FirstNodeID); err != nil {
		return fmt.Errorf("insert graph %s: %w", g.ID, err)
	}

	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		if _, err := tx.ExecContext(ctx, `
INSERT INTO nodes (graph_id, id, type, text, markup, pos_x, pos_y, successor)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, n.ID, n.Type.String(), n.Text, n.Markup, n.Position.X, n.Position.Y, n.Successor); err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
		for i, tag := range n.Tags {
			if _, err := tx.ExecContext(ctx, `INSERT INTO node_tags (graph_id, node_id, position, tag) VALUES (?, ?, ?, ?)`,
				g.ID, n.ID, i, tag); err != nil {
				return fmt.Errorf("insert tag of node %s: %w", n.ID, err)
			}
		}
		for _, a := range n.Answers {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO answers (graph_id, node_id, id, idx, text, successor)
VALUES (?, ?, ?, ?, ?, ?)`,
				g.ID, n.ID, a.ID, a.Index, a.Text, a.Successor); err != nil {
				return fmt.Errorf("insert answer %s: %w", a.ID, err)
			}
		}
	}

	for name, t := range g.Tables {
		cols, err := json.Marshal(t.Columns)
		if err != nil {
			return fmt.Errorf("encode columns of table %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO data_tables (graph_id, name, columns) VALUES (?, ?, ?)`,
			g.ID, name, string(cols)); err != nil {
			return fmt.Errorf("insert table %s: %w", name, err)
		}
		for i, row := range t.Rows {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode row %d of table %s: %w", i, name, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO data_rows (graph_id, table_name, position, data) VALUES (?, ?, ?, ?)`,
				g.ID, name, i, string(data)); err != nil {
				return fmt.Errorf("insert row %d of table %s: %w", i, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// ListGraphs returns the stored graph ids in lexical order.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM graphs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan graph id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const nodeColumns = `id, type, text, markup, pos_x, pos_y, successor`

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*domain.Node, error) {
	var (
		n   domain.Node
		typ string
	)
	if err := row.Scan(&n.ID, &typ, &n.Text, &n.Markup, &n.Position.X, &n.Position.Y, &n.Successor); err != nil {
		return nil, err
	}
	t, err := domain.ParseNodeType(typ)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID, err)
	}
	n.Type = t
	return &n, nil
}

// GetNode loads a node with its tags and answers.
func (s *Store) GetNode(ctx context.Context, graphID, nodeID string) (*domain.Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE graph_id = ? AND id = ?`, graphID, nodeID)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s in graph %s: %w", nodeID, graphID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load node %s: %w", nodeID, err)
	}
	if n.Tags, err = s.tags(ctx, graphID, nodeID); err != nil {
		return nil, err
	}
	if n.Answers, err = s.answers(ctx, graphID, nodeID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Store) tags(ctx context.Context, graphID, nodeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM node_tags WHERE graph_id = ? AND node_id = ? ORDER BY position`, graphID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load tags of %s: %w", nodeID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *Store) answers(ctx context.Context, graphID, nodeID string) ([]domain.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, idx, text, successor FROM answers
WHERE graph_id = ? AND node_id = ?
ORDER BY idx, rowid`, graphID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load answers of %s: %w", nodeID, err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		a := domain.Answer{NodeID: nodeID}
		if err := rows.Scan(&a.ID, &a.Index, &a.Text, &a.Successor); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// GetSuccessor returns the direct successor of node, or nil when it has none.
func (s *Store) GetSuccessor(ctx context.Context, graphID string, node *domain.Node) (*domain.Node, error) {
	if !node.HasSuccessor() {
		return nil, nil
	}
	return s.GetNode(ctx, graphID, node.Successor)
}

// GetAnswers returns the answers of node ordered by index.
func (s *Store) GetAnswers(ctx context.Context, graphID string, node *domain.Node) ([]domain.Answer, error) {
	return s.answers(ctx, graphID, node.ID)
}

// FirstNode returns the START node of the graph.
func (s *Store) FirstNode(ctx context.Context, graphID string) (*domain.Node, error) {
	var first string
	err := s.db.QueryRowContext(ctx, `SELECT first_node FROM graphs WHERE id = ?`, graphID).Scan(&first)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("graph %s: %w", graphID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", graphID, err)
	}
	if first == "" {
		return nil, fmt.Errorf("start node of graph %s: %w", graphID, domain.ErrNotFound)
	}
	return s.GetNode(ctx, graphID, first)
}

// LookupTable queries a data table. Missing or empty tables yield no rows.
func (s *Store) LookupTable(ctx context.Context, graphID, table string, constraints map[string]any, columns []string) ([]map[string]any, error) {
	t, err := s.table(ctx, graphID, table)
	if err != nil {
		return nil, err
	}
	if t == nil || len(t.Rows) == 0 {
		s.logger.Warn("data table missing or empty", "graph", graphID, "table", table)
		return nil, nil
	}
	return t.Lookup(constraints, columns), nil
}

func (s *Store) table(ctx context.Context, graphID, name string) (*domain.DataTable, error) {
	var cols string
	err := s.db.QueryRowContext(ctx, `SELECT columns FROM data_tables WHERE graph_id = ? AND name = ?`, graphID, name).Scan(&cols)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	t := &domain.DataTable{Name: name}
	if err := json.Unmarshal([]byte(cols), &t.Columns); err != nil {
		return nil, fmt.Errorf("decode columns of table %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM data_rows WHERE graph_id = ? AND table_name = ? ORDER BY position`, graphID, name)
	if err != nil {
		return nil, fmt.Errorf("load rows of table %s: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := map[string]any{}
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, fmt.Errorf("decode row of table %s: %w", name, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// ListNodes returns every node of the graph in id order.
func (s *Store) ListNodes(ctx context.Context, graphID string) ([]domain.Node, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graphs WHERE id = ?`, graphID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", graphID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("graph %s: %w", graphID, domain.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE graph_id = ? ORDER BY id`, graphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	var nodes []domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Details are loaded after the cursor is closed: the pool holds one connection.
	for i := range nodes {
		if nodes[i].Tags, err = s.tags(ctx, graphID, nodes[i].ID); err != nil {
			return nil, err
		}
		if nodes[i].Answers, err = s.answers(ctx, graphID, nodes[i].ID); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}
