package loam

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/adapters/tables"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts a Loam document repository to ports.GraphStore. Every
// document is a node, except documents with a "table" key which hold data
// tables. The parsed graph is cached until Invalidate or a watch event.
type Loader struct {
	Repo    *loam.TypedRepository[NodeMetadata]
	graphID string
	logger  *slog.Logger

	mu    sync.Mutex
	cache *memory.Loader
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loam adapter serving the repository as graph graphID.
func New(repo *loam.TypedRepository[NodeMetadata], graphID string, opts ...Option) *Loader {
	l := &Loader{
		Repo:    repo,
		graphID: graphID,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initialises a read-only repository at dir. The graph id is the directory name.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode keeps numbers as json.Number across Markdown, JSON and YAML documents.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo), filepath.Base(absPath), opts...), nil
}

// Create initialises a writable repository at dir, creating the directory
// when missing. Documents are written without version control.
func Create(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", absPath, err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithVersioning(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo), filepath.Base(absPath), opts...), nil
}

// GraphID returns the id the repository is served under.
func (l *Loader) GraphID() string {
	return l.graphID
}

// Invalidate drops the cached graph.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cache = nil
	l.mu.Unlock()
}

func (l *Loader) store(ctx context.Context, graphID string) (*memory.Loader, error) {
	if graphID != l.graphID {
		return nil, fmt.Errorf("graph %s: %w", graphID, domain.ErrNotFound)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache != nil {
		return l.cache, nil
	}
	g, err := l.Graph(ctx)
	if err != nil {
		return nil, err
	}
	l.cache = memory.NewLoader([]*domain.Graph{g}, memory.WithLogger(l.logger))
	return l.cache, nil
}

// Graph reads every document of the repository into a graph.
func (l *Loader) Graph(ctx context.Context) (*domain.Graph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	g := domain.NewGraph(l.graphID, l.graphID)
	seen := make(map[string]string)
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if doc.Data.Table != "" {
			content, err := l.content(ctx, doc.ID)
			if err != nil {
				return nil, err
			}
			t, err := tables.ParseCSV(doc.Data.Table, strings.NewReader(content))
			if err != nil {
				return nil, fmt.Errorf("table document %s: %w", doc.ID, err)
			}
			g.AddTable(t)
			continue
		}

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		content, err := l.content(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		n, err := toNode(id, doc.Data, content)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		g.AddNode(n)
	}
	if g.FirstNodeID == "" {
		l.logger.Warn("loam repository has no start node", "graph", l.graphID)
	}
	return g, nil
}

// content fetches a document body. List only carries ids and metadata.
func (l *Loader) content(ctx context.Context, docID string) (string, error) {
	doc, err := l.Repo.Get(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("loam get failed for %s: %w", docID, err)
	}
	return doc.Content, nil
}

func toNode(id string, meta NodeMetadata, content string) (*domain.Node, error) {
	typ, err := domain.ParseNodeType(meta.Type)
	if meta.Type == "" {
		typ, err = domain.NodeTypeQuestion, nil
	}
	if err != nil {
		return nil, err
	}

	markup := strings.TrimSpace(content)
	n := &domain.Node{
		ID:        id,
		Type:      typ,
		Markup:    markup,
		Text:      meta.Text,
		Successor: trimExtension(firstNonEmpty(meta.Successor, meta.To)),
		Tags:      meta.Tags,
	}
	if n.Text == "" {
		n.Text = domain.RawText(markup)
	}

	if len(meta.Position) > 0 {
		var pos LoaderPosition
		if err := weakDecode(meta.Position, &pos); err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		n.Position = domain.Position{X: pos.X, Y: pos.Y}
	}

	for i, raw := range meta.Answers {
		var la LoaderAnswer
		switch v := raw.(type) {
		case string:
			la.Text = v
		case map[string]any, map[any]any:
			if err := weakDecode(v, &la); err != nil {
				return nil, fmt.Errorf("answer %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("invalid answer definition type: %T", v)
		}
		if la.ID == "" {
			la.ID = fmt.Sprintf("%s-%d", id, i)
		}
		n.Answers = append(n.Answers, domain.Answer{
			ID:        la.ID,
			Index:     i,
			Text:      la.Text,
			Successor: trimExtension(firstNonEmpty(la.Successor, la.To)),
		})
	}
	return n, nil
}

func weakDecode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Save writes g into the repository, one document per node and table.
func (l *Loader) Save(ctx context.Context, g *domain.Graph) error {
	for _, n := range g.SortedNodes() {
		meta := NodeMetadata{
			ID:        n.ID,
			Type:      n.Type.String(),
			Successor: n.Successor,
			Tags:      n.Tags,
			Position:  map[string]any{"x": n.Position.X, "y": n.Position.Y},
		}
		if n.Text != domain.RawText(n.Markup) {
			meta.Text = n.Text
		}
		for _, a := range n.Answers {
			meta.Answers = append(meta.Answers, map[string]any{
				"id":        a.ID,
				"text":      a.Text,
				"successor": a.Successor,
			})
		}
		if err := l.Repo.Save(ctx, &loam.DocumentModel[NodeMetadata]{ID: n.ID, Content: n.Markup, Data: meta}); err != nil {
			return fmt.Errorf("save node %s: %w", n.ID, err)
		}
	}
	for name, t := range g.Tables {
		var buf bytes.Buffer
		if err := tables.FormatCSV(&buf, t); err != nil {
			return fmt.Errorf("encode table %s: %w", name, err)
		}
		doc := &loam.DocumentModel[NodeMetadata]{
			ID:      "table-" + name,
			Content: buf.String(),
			Data:    NodeMetadata{Table: name},
		}
		if err := l.Repo.Save(ctx, doc); err != nil {
			return fmt.Errorf("save table %s: %w", name, err)
		}
	}
	l.Invalidate()
	return nil
}

// Watch invalidates the cached graph on every repository change and
// forwards the changed document ids.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				l.Invalidate()
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// ListGraphs returns the single graph served by the repository.
func (l *Loader) ListGraphs(ctx context.Context) ([]string, error) {
	return []string{l.graphID}, nil
}

// GetNode retrieves a copy of a node.
func (l *Loader) GetNode(ctx context.Context, graphID, nodeID string) (*domain.Node, error) {
	s, err := l.store(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return s.GetNode(ctx, graphID, trimExtension(nodeID))
}

// GetSuccessor returns the direct successor of node, or nil when it has none.
func (l *Loader) GetSuccessor(ctx context.Context, graphID string, node *domain.Node) (*domain.Node, error) {
	s, err := l.store(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return s.GetSuccessor(ctx, graphID, node)
}

// GetAnswers returns the answers of node ordered by index.
func (l *Loader) GetAnswers(ctx context.Context, graphID string, node *domain.Node) ([]domain.Answer, error) {
	s, err := l.store(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return s.GetAnswers(ctx, graphID, node)
}

// FirstNode returns the START node.
func (l *Loader) FirstNode(ctx context.Context, graphID string) (*domain.Node, error) {
	s, err := l.store(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return s.FirstNode(ctx, graphID)
}

// LookupTable queries a table document.
func (l *Loader) LookupTable(ctx context.Context, graphID, table string, constraints map[string]any, columns []string) ([]map[string]any, error) {
	s, err := l.store(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return s.LookupTable(ctx, graphID, table, constraints, columns)
}

// ListNodes returns every node document in id order.
func (l *Loader) ListNodes(ctx context.Context, graphID string) ([]domain.Node, error) {
	s, err := l.store(ctx, graphID)
	if err != nil {
		return nil, err
	}
	return s.ListNodes(ctx, graphID)
}
