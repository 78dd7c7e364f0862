package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/diagraph/internal/runtime"
	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/session"
	"github.com/stretchr/testify/require"
)

const graphID = "g"

func start(successor string) domain.Node {
	return domain.Node{ID: "start", Type: domain.NodeTypeStart, Successor: successor}
}

func info(id, markup, successor string) domain.Node {
	return domain.Node{ID: id, Type: domain.NodeTypeInfo, Markup: markup, Successor: successor}
}

func question(id, markup string, answers ...domain.Answer) domain.Node {
	return domain.Node{ID: id, Type: domain.NodeTypeQuestion, Markup: markup, Answers: answers}
}

func answer(id string, index int, text, successor string) domain.Answer {
	return domain.Answer{ID: id, Index: index, Text: text, Successor: successor}
}

func newEngine(t *testing.T, nodes []domain.Node, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	loader, err := memory.NewFromNodes(graphID, nodes...)
	require.NoError(t, err)
	engine, err := runtime.NewEngine(loader, session.NewManager(memory.NewStore()), opts...)
	require.NoError(t, err)
	return engine
}

func turn(t *testing.T, e *runtime.Engine, user string, belief domain.BeliefState, acts ...domain.UserAct) *domain.TurnResult {
	t.Helper()
	res, err := e.HandleTurn(context.Background(), ports.TurnRequest{
		UserID:  user,
		GraphID: graphID,
		Belief:  belief,
		Acts:    acts,
	})
	require.NoError(t, err)
	return res
}

func pick(text string) domain.UserAct {
	return domain.UserAct{Type: domain.ActAnswer, Text: text}
}

type topicMsg struct {
	user    string
	topic   string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []topicMsg
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, userID, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, topicMsg{user: userID, topic: topic, payload: payload})
	return p.err
}

var errStoreDown = errors.New("store down")

type brokenStore struct{}

func (brokenStore) Save(ctx context.Context, c *domain.Cursor) error {
	return errStoreDown
}

func (brokenStore) Load(ctx context.Context, userID string) (*domain.Cursor, error) {
	return nil, errStoreDown
}

func (brokenStore) Delete(ctx context.Context, userID string) error {
	return errStoreDown
}

func (brokenStore) List(ctx context.Context) ([]string, error) {
	return nil, errStoreDown
}
