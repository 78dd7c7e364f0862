package template

import (
	"context"
	"fmt"
	"strings"
)

// LookupFunc queries a data table for rows matching constraints, projected on columns.
type LookupFunc func(ctx context.Context, table string, constraints map[string]any, columns []string) ([]map[string]any, error)

// Scope is the evaluation context of a template.
type Scope struct {
	Vars   map[string]any
	Lookup LookupFunc
}

// Render evaluates every segment and concatenates the results with the literal text.
func (d *Display) Render(ctx context.Context, scope Scope) (string, error) {
	ev := &evaluator{ctx: ctx, scope: scope}
	var sb strings.Builder
	for _, seg := range d.Segments {
		if seg.Expr == nil {
			sb.WriteString(seg.Literal)
			continue
		}
		v, err := ev.eval(seg.Expr)
		if err != nil {
			return "", err
		}
		sb.WriteString(Format(v))
	}
	return sb.String(), nil
}

// Eval evaluates the template to a boolean. A false result with a nil error
// is a valid outcome; any error means the template could not be evaluated.
func (l *Logic) Eval(ctx context.Context, scope Scope) (bool, error) {
	ev := &evaluator{ctx: ctx, scope: scope, logic: true}
	v, err := ev.eval(l.Root)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Op: "condition", Left: v}
	}
	return b, nil
}

type evaluator struct {
	ctx   context.Context
	scope Scope
	logic bool
}

func (ev *evaluator) eval(e Expr) (any, error) {
	switch n := e.(type) {
	case *LiteralExpr:
		return n.Value, nil
	case *VarExpr:
		v, ok := ev.scope.Vars[n.Name]
		if !ok {
			return nil, &UnboundVariableError{Name: n.Name}
		}
		return normalize(v), nil
	case *DefaultExpr:
		return true, nil
	case *NegExpr:
		v, err := ev.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		f, ok := number(v)
		if !ok {
			return nil, &TypeError{Op: "-", Left: v}
		}
		return -f, nil
	case *BinaryExpr:
		left, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, left, right)
	case *LookupExpr:
		return ev.lookup(n)
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

func (ev *evaluator) lookup(n *LookupExpr) (any, error) {
	constraints := make(map[string]any, len(n.Args))
	for _, arg := range n.Args {
		v, err := ev.eval(arg.Value)
		if err != nil {
			return nil, err
		}
		constraints[arg.Column] = v
	}

	var rows []map[string]any
	if ev.scope.Lookup != nil {
		var err error
		rows, err = ev.scope.Lookup(ev.ctx, n.Table, constraints, []string{n.Column})
		if err != nil {
			return nil, fmt.Errorf("lookup %s.%s: %w", n.Table, n.Column, err)
		}
	}

	if !ev.logic {
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoTableRow, n)
		}
		return normalize(rows[0][n.Column]), nil
	}
	if len(rows) == 1 {
		return normalize(rows[0][n.Column]), nil
	}
	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = normalize(row[n.Column])
	}
	return values, nil
}

func binary(op TokenKind, left, right any) (any, error) {
	switch op {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash:
		return arith(op, left, right)
	case TokenEq:
		return equal(left, right), nil
	case TokenNeq:
		return !equal(left, right), nil
	case TokenGt, TokenGte, TokenLt, TokenLte:
		return order(op, left, right)
	case TokenAnd, TokenOr:
		l, lok := left.(bool)
		r, rok := right.(bool)
		if !lok || !rok {
			return nil, &TypeError{Op: op.String(), Left: left, Right: right}
		}
		if op == TokenAnd {
			return l && r, nil
		}
		return l || r, nil
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}

func arith(op TokenKind, left, right any) (any, error) {
	l, lok := number(left)
	r, rok := number(right)
	if lok && rok {
		switch op {
		case TokenPlus:
			return l + r, nil
		case TokenMinus:
			return l - r, nil
		case TokenStar:
			return l * r, nil
		default:
			if r == 0 {
				return 0.0, nil
			}
			return l / r, nil
		}
	}
	if op == TokenPlus {
		ls, lok := left.(string)
		rs, rok := right.(string)
		if lok && rok {
			return ls + rs, nil
		}
	}
	return nil, &TypeError{Op: op.String(), Left: left, Right: right}
}

// equal compares two strings case-insensitively after trimming. Any other
// pair must match in kind and value, so a string never equals a number.
func equal(left, right any) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok || rok {
		return lok && rok && strings.EqualFold(strings.TrimSpace(ls), strings.TrimSpace(rs))
	}
	if l, ok := number(left); ok {
		r, ok := number(right)
		return ok && l == r
	}
	switch l := left.(type) {
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case []any:
		r, ok := right.([]any)
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !equal(l[i], r[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func order(op TokenKind, left, right any) (any, error) {
	var cmp int
	l, lok := number(left)
	r, rok := number(right)
	switch {
	case lok && rok:
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	default:
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return nil, &TypeError{Op: op.String(), Left: left, Right: right}
		}
		cmp = strings.Compare(ls, rs)
	}
	switch op {
	case TokenGt:
		return cmp > 0, nil
	case TokenGte:
		return cmp >= 0, nil
	case TokenLt:
		return cmp < 0, nil
	default:
		return cmp <= 0, nil
	}
}
