package update

import "fmt"

// Reason classifies why a statement could not be applied.
type Reason int

const (
	ReasonMissingValue Reason = iota
	ReasonInvalidValue
	ReasonUnsupportedOperator
	ReasonMissingOperand
)

// Error is a failed update. Its message is shown to the user verbatim.
type Error struct {
	Var    string
	Value  string
	Reason Reason
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonMissingValue:
		return fmt.Sprintf("The variable '%s' could not be updated, as there was no right hand side specified", e.Var)
	case ReasonUnsupportedOperator:
		return fmt.Sprintf("The variable '%s' could not be updated, as the operator '%s' is not supported", e.Var, e.Value)
	case ReasonMissingOperand:
		return fmt.Sprintf("The variable '%s' could not be updated, as the operator '%s' requires a second value", e.Var, e.Value)
	default:
		return fmt.Sprintf("The variable '%s' could not be updated, as the variable/value '%s' was invalid or not in the chat history", e.Var, e.Value)
	}
}
