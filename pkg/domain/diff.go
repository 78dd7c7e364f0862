package domain

import (
	"reflect"
)

// BeliefDiff lists the variables changed by a turn.
// It is designed to be serialized to JSON for partial updates on the client.
type BeliefDiff struct {
	UserID string `json:"user_id"`

	// Changes contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Changes map[string]any `json:"changes,omitempty"`
}

// Diff calculates the difference between two belief states.
// A nil old state yields every key of the new one. Returns nil when nothing changed.
func Diff(userID string, old, new BeliefState) *BeliefDiff {
	delta := make(map[string]any)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return &BeliefDiff{UserID: userID, Changes: delta}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *BeliefDiff) IsEmpty() bool {
	return d == nil || len(d.Changes) == 0
}

// Keys returns the changed variable names.
func (d *BeliefDiff) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.Changes))
	for k := range d.Changes {
		keys = append(keys, k)
	}
	return keys
}
