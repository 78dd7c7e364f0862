package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter    EventType = "node_enter"
	EventBeliefUpdate EventType = "belief_update"
	EventTurnEnd      EventType = "turn_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	GraphID   string    `json:"graph_id"`
}

// NodeEvent is emitted every time a handler takes a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
	Turn     int      `json:"turn"`
}

// BeliefEvent is emitted when an UPDATE node writes a variable.
type BeliefEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	Variable string `json:"variable"`
	Value    any    `json:"value"`
}

// TurnEvent is emitted once per handled turn.
type TurnEvent struct {
	EventBase
	Outcome  TurnOutcome   `json:"outcome"`
	NodeID   string        `json:"node_id"`
	Hops     int           `json:"hops"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter    func(context.Context, *NodeEvent)
	OnBeliefUpdate func(context.Context, *BeliefEvent)
	OnTurnEnd      func(context.Context, *TurnEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *NodeEvent) {
			if h.OnNodeEnter != nil {
				h.OnNodeEnter(ctx, e)
			}
			if other.OnNodeEnter != nil {
				other.OnNodeEnter(ctx, e)
			}
		},
		OnBeliefUpdate: func(ctx context.Context, e *BeliefEvent) {
			if h.OnBeliefUpdate != nil {
				h.OnBeliefUpdate(ctx, e)
			}
			if other.OnBeliefUpdate != nil {
				other.OnBeliefUpdate(ctx, e)
			}
		},
		OnTurnEnd: func(ctx context.Context, e *TurnEvent) {
			if h.OnTurnEnd != nil {
				h.OnTurnEnd(ctx, e)
			}
			if other.OnTurnEnd != nil {
				other.OnTurnEnd(ctx, e)
			}
		},
	}
}
