package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/diagraph/pkg/domain"
)

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "node_id", e.NodeID, "type", e.NodeType, "turn", e.Turn)
		},
		OnBeliefUpdate: func(ctx context.Context, e *domain.BeliefEvent) {
			logger.Debug("Belief Update", "node_id", e.NodeID, "variable", e.Variable, "value", e.Value)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			logger.Debug("Turn End", "node_id", e.NodeID, "outcome", e.Outcome, "hops", e.Hops, "duration", e.Duration)
		},
	}
}
