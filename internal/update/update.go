// Package update evaluates the statements stored on UPDATE nodes.
//
// A statement is whitespace delimited: VAR[(TYPE)] = RHS1 [OP RHS2].
// RHS1 and RHS2 name belief state variables or literals. OP is one of
// + - * / AND OR NEGATE.
package update

import (
	"strconv"
	"strings"

	"github.com/aretw0/diagraph/pkg/domain"
)

// Op is the optional operator of a statement.
type Op string

const (
	OpNone   Op = ""
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpAnd    Op = "AND"
	OpOr     Op = "OR"
	OpNegate Op = "NEGATE"
)

// IsArithmetic reports whether op combines two numbers.
func (op Op) IsArithmetic() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv
}

// IsLogical reports whether op works on booleans.
func (op Op) IsLogical() bool {
	return op == OpAnd || op == OpOr || op == OpNegate
}

// Statement is a parsed update statement.
type Statement struct {
	Source string
	Var    string
	// Type is the declaration tag, e.g. NUMBER in "x(NUMBER) = 1". Informational only.
	Type string
	RHS1 string
	Op   Op
	RHS2 string
}

// Parse splits a statement into its positional tokens. The assignment
// token is not checked.
func Parse(src string) (*Statement, error) {
	tokens := strings.Fields(src)
	st := &Statement{Source: src}
	if len(tokens) == 0 {
		return nil, &Error{Reason: ReasonMissingValue}
	}

	name, tag, _ := strings.Cut(tokens[0], "(")
	st.Var = name
	st.Type = strings.TrimSuffix(tag, ")")

	if len(tokens) < 3 {
		return nil, &Error{Var: st.Var, Reason: ReasonMissingValue}
	}
	st.RHS1 = tokens[2]

	if len(tokens) > 3 {
		st.Op = Op(tokens[3])
		if !st.Op.IsArithmetic() && !st.Op.IsLogical() {
			return nil, &Error{Var: st.Var, Value: tokens[3], Reason: ReasonUnsupportedOperator}
		}
	}
	if len(tokens) > 4 {
		st.RHS2 = tokens[4]
	}
	if st.RHS2 == "" && (st.Op.IsArithmetic() || st.Op == OpAnd || st.Op == OpOr) {
		return nil, &Error{Var: st.Var, Value: string(st.Op), Reason: ReasonMissingOperand}
	}
	return st, nil
}

// Apply evaluates the statement against belief and writes the result.
// On error belief is left untouched.
func (s *Statement) Apply(belief domain.BeliefState) (any, error) {
	value, err := s.Eval(belief)
	if err != nil {
		return nil, err
	}
	belief[s.Var] = value
	return value, nil
}

// Eval computes the new value without writing it.
func (s *Statement) Eval(belief domain.BeliefState) (any, error) {
	lhs, ok := scalar(resolve(belief, s.RHS1))
	if !ok {
		return nil, s.invalid(s.RHS1)
	}

	switch {
	case s.Op == OpNone:
		return lhs, nil
	case s.Op.IsArithmetic():
		l, ok := lhs.(float64)
		if !ok {
			return nil, s.invalid(s.RHS1)
		}
		r, ok := scalar(resolve(belief, s.RHS2))
		rf, isNum := r.(float64)
		if !ok || !isNum {
			return nil, s.invalid(s.RHS2)
		}
		return arith(s.Op, l, rf), nil
	case s.Op == OpNegate:
		switch v := lhs.(type) {
		case bool:
			return !v, nil
		case float64:
			return v == 0, nil
		}
		return nil, s.invalid(s.RHS1)
	default:
		l, ok := lhs.(bool)
		if !ok {
			return nil, s.invalid(s.RHS1)
		}
		r, ok := scalar(resolve(belief, s.RHS2))
		rb, isBool := r.(bool)
		if !ok || !isBool {
			return nil, s.invalid(s.RHS2)
		}
		if s.Op == OpAnd {
			return l && rb, nil
		}
		return l || rb, nil
	}
}

func (s *Statement) invalid(value string) error {
	return &Error{Var: s.Var, Value: value, Reason: ReasonInvalidValue}
}

// resolve returns the belief state value of token, or the trimmed token itself.
func resolve(belief domain.BeliefState, token string) any {
	if v, ok := belief[token]; ok {
		return v
	}
	return strings.TrimSpace(token)
}

// scalar coerces a resolved value to bool or float64.
func scalar(v any) (any, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	if f, ok := domain.ToFloat(v); ok {
		return f, true
	}
	return nil, false
}

func arith(op Op, l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	default:
		if r == 0 {
			return 0
		}
		return l / r
	}
}

// Run parses and applies src in one step.
func Run(src string, belief domain.BeliefState) (string, any, error) {
	st, err := Parse(src)
	if err != nil {
		return "", nil, err
	}
	v, err := st.Apply(belief)
	return st.Var, v, err
}
