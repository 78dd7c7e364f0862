package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/session"
	"github.com/aretw0/diagraph/pkg/template"
)

// Engine is the dialog policy: it walks a graph one user turn at a time.
type Engine struct {
	graphs        ports.GraphStore
	sessions      *session.Manager
	publisher     ports.Publisher
	templates     *template.Cache
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	maxCandidates int
	now           func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithPublisher broadcasts every turn result.
func WithPublisher(p ports.Publisher) EngineOption {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithTemplateCache shares a parsed-template cache.
func WithTemplateCache(c *template.Cache) EngineOption {
	return func(e *Engine) {
		e.templates = c
	}
}

// WithMaxCandidates limits the answer candidates returned per turn. Zero means unlimited.
func WithMaxCandidates(n int) EngineOption {
	return func(e *Engine) {
		e.maxCandidates = n
	}
}

// NewEngine creates an engine reading graphs from graphs and cursors through sessions.
func NewEngine(graphs ports.GraphStore, sessions *session.Manager, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		graphs:   graphs,
		sessions: sessions,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.templates == nil {
		c, err := template.NewCache(template.DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		e.templates = c
	}
	return e, nil
}

// HandleTurn runs one turn for a user. Problems in the graph are turned into
// utterances; the returned error is reserved for session store failures and
// a context cancelled before the turn started.
func (e *Engine) HandleTurn(ctx context.Context, req ports.TurnRequest) (*domain.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *domain.TurnResult
	err := e.sessions.WithLock(ctx, req.UserID, func(ctx context.Context) error {
		cursor, err := e.sessions.LoadOrStart(ctx, req.UserID, req.GraphID)
		if err != nil {
			return err
		}
		if cursor.GraphID != req.GraphID {
			// Switching graphs starts the new dialog from its entry.
			cursor.NodeID = ""
			cursor.Turn = 0
			cursor.GraphID = req.GraphID
		}

		started := e.now()
		t := e.newTurn(ctx, req, cursor)
		t.run()
		result = t.result

		cursor.NodeID = result.NodeID
		cursor.Turn = t.turnCount
		result.Turn = cursor.Turn
		if err := e.sessions.Store().Save(ctx, cursor); err != nil {
			return fmt.Errorf("failed to save cursor: %w", err)
		}

		e.emitTurnEnd(ctx, t, e.now().Sub(started))
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, req.UserID, result)
	return result, nil
}

// OnDialogStart resets the cursor of a user so the next turn starts over.
func (e *Engine) OnDialogStart(ctx context.Context, userID string) error {
	e.logger.Info("dialog start", "user", userID, "node", "", "turn", 0)
	return e.sessions.Reset(ctx, userID)
}

// PossibleAnswers lists the candidates offered at a node.
func (e *Engine) PossibleAnswers(ctx context.Context, graphID, nodeID string, belief domain.BeliefState) ([]string, error) {
	node, err := e.graphs.GetNode(ctx, graphID, nodeID)
	if err != nil {
		return nil, err
	}
	answers, err := e.graphs.GetAnswers(ctx, graphID, node)
	if err != nil {
		return nil, err
	}
	return e.candidates(answers, belief), nil
}

// Graphs returns the graph store.
func (e *Engine) Graphs() ports.GraphStore {
	return e.graphs
}

// Templates returns the template cache.
func (e *Engine) Templates() *template.Cache {
	return e.templates
}

func (e *Engine) publish(ctx context.Context, userID string, r *domain.TurnResult) {
	if e.publisher == nil {
		return
	}
	topics := []struct {
		name    string
		payload any
	}{
		{domain.TopicUtterances, r.Utterances},
		{domain.TopicNodeID, r.NodeID},
		{domain.TopicCandidates, r.Candidates},
		{domain.TopicBelief, r.Belief},
		{domain.TopicTerminal, r.Terminal},
	}
	for _, topic := range topics {
		if err := e.publisher.Publish(ctx, userID, topic.name, topic.payload); err != nil {
			e.logger.Warn("failed to publish turn result", "user", userID, "topic", topic.name, "err", err)
		}
	}
}
