package domain

// BeliefState holds the per-user dialog variables. Values are float64, bool,
// string or []any.
type BeliefState map[string]any

// NewBeliefState returns an empty belief state.
func NewBeliefState() BeliefState {
	return make(BeliefState)
}

// Clone returns a copy that can be mutated without touching the receiver.
// List values are copied one level deep.
func (b BeliefState) Clone() BeliefState {
	out := make(BeliefState, len(b))
	for k, v := range b {
		if list, ok := v.([]any); ok {
			v = append([]any(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Has reports whether name is bound.
func (b BeliefState) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// Cursor is the per-user position in a dialog graph.
type Cursor struct {
	UserID  string `json:"user_id"`
	GraphID string `json:"graph_id,omitempty"`

	// NodeID is the node waiting for user input. Empty means the dialog has
	// not started yet (or was reset).
	NodeID string `json:"node_id"`

	// Turn counts handled nodes since the dialog started.
	Turn int `json:"turn"`
}

// NewCursor creates a cursor at the beginning of the dialog.
func NewCursor(userID, graphID string) *Cursor {
	return &Cursor{UserID: userID, GraphID: graphID}
}

// Started reports whether the cursor points at a node.
func (c *Cursor) Started() bool {
	return c.NodeID != ""
}
