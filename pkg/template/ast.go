package template

import (
	"fmt"
	"strings"
)

// Expr is the interface implemented by all AST nodes.
type Expr interface {
	expr() // marker method
	String() string
}

// BinaryExpr is an arithmetic, comparison or boolean operation.
type BinaryExpr struct {
	Left  Expr
	Op    TokenKind
	Right Expr
}

func (e *BinaryExpr) expr() {}
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// NegExpr is unary minus.
type NegExpr struct {
	Operand Expr
}

func (e *NegExpr) expr() {}
func (e *NegExpr) String() string {
	return fmt.Sprintf("(-%s)", e.Operand)
}

// LiteralExpr is a number, string or boolean constant.
type LiteralExpr struct {
	Value any // float64, string or bool
}

func (e *LiteralExpr) expr() {}
func (e *LiteralExpr) String() string {
	if s, ok := e.Value.(string); ok {
		return `"` + s + `"`
	}
	return Format(e.Value)
}

// VarExpr references a belief state variable.
type VarExpr struct {
	Name string
}

func (e *VarExpr) expr() {}
func (e *VarExpr) String() string {
	return e.Name
}

// DefaultExpr is the catch-all clause of a LOGIC node. It always holds.
type DefaultExpr struct {
	// Operand is the expression DEFAULT was appended to, if any. It is not evaluated.
	Operand Expr
}

func (e *DefaultExpr) expr() {}
func (e *DefaultExpr) String() string {
	if e.Operand != nil {
		return fmt.Sprintf("(%s DEFAULT)", e.Operand)
	}
	return "DEFAULT"
}

// LookupArg is one named equality constraint of a table lookup.
type LookupArg struct {
	Column string
	Value  Expr
}

// LookupExpr reads Column from the rows of Table matching every Arg.
type LookupExpr struct {
	Table  string
	Column string
	Args   []LookupArg
}

func (e *LookupExpr) expr() {}
func (e *LookupExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Column + "=" + a.Value.String()
	}
	return fmt.Sprintf("%s.%s(%s)", e.Table, e.Column, strings.Join(args, ", "))
}

// Walk calls fn for e and every sub-expression, depth first.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *NegExpr:
		Walk(n.Operand, fn)
	case *DefaultExpr:
		Walk(n.Operand, fn)
	case *LookupExpr:
		for _, a := range n.Args {
			Walk(a.Value, fn)
		}
	}
}
