package diagraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/internal/runtime"
	"github.com/aretw0/diagraph/internal/validator"
	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/session"
	"github.com/aretw0/diagraph/pkg/template"
)

// Version is the library release.
const Version = "0.4.0"

// ErrNoGraph is returned when a source holds no dialog graph.
var ErrNoGraph = errors.New("no dialog graph available")

// Engine is the high-level entry point for the diagraph library.
// It wraps the internal policy runtime and the authoring validator.
type Engine struct {
	runtime   *runtime.Engine
	graphs    ports.GraphStore
	sessions  ports.SessionStore
	locker    ports.DistributedLocker
	publisher ports.Publisher
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	maxCandidates int
	cacheSize     int
	closers       []io.Closer

	// Name labels the graph source, e.g. the base name of the directory or file.
	Name string
}

var _ ports.DialogEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGraphStore injects a graph store, bypassing source detection.
func WithGraphStore(s ports.GraphStore) Option {
	return func(e *Engine) {
		e.graphs = s
	}
}

// WithSessionStore sets where cursors are kept between turns (default: memory).
func WithSessionStore(s ports.SessionStore) Option {
	return func(e *Engine) {
		e.sessions = s
	}
}

// WithLocker enables distributed per-user locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithPublisher broadcasts every turn result.
func WithPublisher(p ports.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxCandidates limits the answer candidates per turn. Zero means unlimited.
func WithMaxCandidates(n int) Option {
	return func(e *Engine) {
		e.maxCandidates = n
	}
}

// WithCacheSize sets how many parsed templates are kept per grammar.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// WithCloser registers a resource released by Close, e.g. a Redis client.
func WithCloser(c io.Closer) Option {
	return func(e *Engine) {
		e.closers = append(e.closers, c)
	}
}

// New initializes an Engine. The source names a graph file (.json, .yaml),
// a SQLite database (.db, .sqlite) or a Loam directory of node documents.
// If WithGraphStore is provided, source can be empty and is only used as a label.
func New(source string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if source != "" {
		eng.Name = filepath.Base(source)
	}

	if eng.graphs == nil {
		if source == "" {
			return nil, fmt.Errorf("source is required when no graph store is provided")
		}
		store, closer, err := OpenGraphStore(context.Background(), source, eng.logger)
		if err != nil {
			return nil, err
		}
		eng.graphs = store
		if closer != nil {
			eng.closers = append(eng.closers, closer)
		}
	}

	if eng.sessions == nil {
		eng.sessions = memory.NewStore()
	}
	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}

	cache, err := template.NewCache(eng.cacheSize)
	if err != nil {
		return nil, err
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithTemplateCache(cache),
		runtime.WithMaxCandidates(eng.maxCandidates),
	}
	if eng.publisher != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithPublisher(eng.publisher))
	}

	eng.runtime, err = runtime.NewEngine(eng.graphs, session.NewManager(eng.sessions, sessionOpts...), runtimeOpts...)
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// HandleTurn runs one dialog turn for a user.
func (e *Engine) HandleTurn(ctx context.Context, req ports.TurnRequest) (*domain.TurnResult, error) {
	return e.runtime.HandleTurn(ctx, req)
}

// OnDialogStart resets the cursor of a user so the next turn starts over.
func (e *Engine) OnDialogStart(ctx context.Context, userID string) error {
	return e.runtime.OnDialogStart(ctx, userID)
}

// PossibleAnswers lists the answer candidates of a node.
func (e *Engine) PossibleAnswers(ctx context.Context, graphID, nodeID string, belief domain.BeliefState) ([]string, error) {
	return e.runtime.PossibleAnswers(ctx, graphID, nodeID, belief)
}

// Validate checks a graph for authoring errors.
func (e *Engine) Validate(ctx context.Context, graphID string) (*domain.ValidationReport, error) {
	return validator.ValidateGraph(ctx, e.graphs, graphID)
}

// Graph returns every node of a graph for visualization or introspection tools.
func (e *Engine) Graph(ctx context.Context, graphID string) ([]domain.Node, error) {
	return e.graphs.ListNodes(ctx, graphID)
}

// Graphs returns the underlying graph store.
func (e *Engine) Graphs() ports.GraphStore {
	return e.graphs
}

// Sessions returns the cursor store.
func (e *Engine) Sessions() ports.SessionStore {
	return e.sessions
}

// GraphIDs lists the graphs of the store. Stores that cannot enumerate their
// graphs yield ErrNoGraph.
func (e *Engine) GraphIDs(ctx context.Context) ([]string, error) {
	lister, ok := e.graphs.(ports.GraphLister)
	if !ok {
		return nil, ErrNoGraph
	}
	return lister.ListGraphs(ctx)
}

// DefaultGraph returns the first graph of the store.
func (e *Engine) DefaultGraph(ctx context.Context) (string, error) {
	ids, err := e.GraphIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoGraph
	}
	return ids[0], nil
}

// Close releases the resources opened by New or registered with WithCloser.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
