package template

import (
	"errors"
	"fmt"
)

// ErrNoTableRow is returned when a display lookup matches no row.
var ErrNoTableRow = errors.New("no matching table row")

// SyntaxError reports malformed template text.
type SyntaxError struct {
	Template string
	Pos      int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d in %q: %s", e.Pos, e.Template, e.Msg)
}

// UnboundVariableError is returned when a template references a variable
// missing from the belief state.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

// TypeError is returned when an operator gets operands it cannot combine.
type TypeError struct {
	Op    string
	Left  any
	Right any
}

func (e *TypeError) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("cannot apply %s to %T", e.Op, e.Left)
	}
	return fmt.Sprintf("cannot apply %s to %T and %T", e.Op, e.Left, e.Right)
}
