package runtime

import (
	"fmt"

	"github.com/aretw0/diagraph/pkg/domain"
)

// GenericErrorText is shown to the user when the graph itself is broken.
const GenericErrorText = "There was an error in the dialog graph. Please contact the author of this dialog."

// BrokenReferenceError reports an edge that leads nowhere.
type BrokenReferenceError struct {
	NodeID string
	// Ref names what was missing: a node id, an answer id or "DEFAULT".
	Ref string
	Err error
}

func (e *BrokenReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("node '%s' has a broken reference to '%s': %v", e.NodeID, e.Ref, e.Err)
	}
	return fmt.Sprintf("node '%s' has a broken reference to '%s'", e.NodeID, e.Ref)
}

func (e *BrokenReferenceError) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrBrokenReference, e.Err}
	}
	return []error{domain.ErrBrokenReference}
}

// RecursionLimitError is returned when a turn traverses MaxHops nodes without user input.
type RecursionLimitError struct {
	NodeID string
	Hops   int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("traversed %d nodes without user input (stopped at '%s')", e.Hops, e.NodeID)
}

func (e *RecursionLimitError) Unwrap() error {
	return domain.ErrRecursionLimit
}

// RecursionLimitText is the diagnostic shown when the hop bound is hit.
func RecursionLimitText(maxHops int) string {
	return fmt.Sprintf("Traversing more than %d nodes without user input in between is not currently supported (also verify that your graph doesn't contain infinite loops)!", maxHops)
}

// UnrecognizedValueText asks the user to rephrase a value.
func UnrecognizedValueText(slot, value string) string {
	return fmt.Sprintf("Sorry, I didn't recognize %s as %s. Please rephrase your input!", value, slot)
}

// TooManyValuesText asks the user to give a single value.
func TooManyValuesText(slot, value string) string {
	return fmt.Sprintf("I recognized multiple values for the variable %s: %s. Please enter only one value at a time!", slot, value)
}
