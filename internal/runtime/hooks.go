package runtime

import (
	"context"
	"time"

	"github.com/aretw0/diagraph/pkg/domain"
)

func (t *turn) base(typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: t.e.now(),
		Type:      typ,
		UserID:    t.userID,
		GraphID:   t.graphID,
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, t *turn, node *domain.Node) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: t.base(domain.EventNodeEnter),
		NodeID:    node.ID,
		NodeType:  node.Type,
		Turn:      t.turnCount,
	})
}

func (e *Engine) emitBeliefUpdate(ctx context.Context, t *turn, node *domain.Node, name string, value any) {
	if e.hooks.OnBeliefUpdate == nil {
		return
	}
	e.hooks.OnBeliefUpdate(ctx, &domain.BeliefEvent{
		EventBase: t.base(domain.EventBeliefUpdate),
		NodeID:    node.ID,
		Variable:  name,
		Value:     value,
	})
}

func (e *Engine) emitTurnEnd(ctx context.Context, t *turn, d time.Duration) {
	if e.hooks.OnTurnEnd == nil {
		return
	}
	e.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
		EventBase: t.base(domain.EventTurnEnd),
		Outcome:   t.result.Outcome,
		NodeID:    t.result.NodeID,
		Hops:      t.hops,
		Duration:  d,
	})
}
