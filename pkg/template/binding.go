package template

import (
	"fmt"
	"strings"
)

// VarType is the declared type of a variable collected by an answer template.
type VarType string

const (
	TypeNumber    VarType = "NUMBER"
	TypeBoolean   VarType = "BOOLEAN"
	TypeText      VarType = "TEXT"
	TypeTimepoint VarType = "TIMEPOINT"
	TypeTimespan  VarType = "TIMESPAN"
)

var varTypes = map[string]VarType{
	string(TypeNumber):    TypeNumber,
	string(TypeBoolean):   TypeBoolean,
	string(TypeText):      TypeText,
	string(TypeTimepoint): TypeTimepoint,
	string(TypeTimespan):  TypeTimespan,
}

// Binding is a parsed answer template {{ NAME = TYPE }}.
type Binding struct {
	Name string
	Type VarType
}

func (b Binding) String() string {
	return fmt.Sprintf("{{ %s = %s }}", b.Name, b.Type)
}

// ParseBinding parses an answer template of the form {{ NAME = TYPE }}.
// The type name is matched case-insensitively.
func ParseBinding(src string) (Binding, error) {
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, openDelim) {
		return Binding{}, &SyntaxError{Template: src, Pos: 0, Msg: "answer template must start with {{"}
	}
	p, err := newParser(src, strings.Index(src, openDelim)+len(openDelim), false)
	if err != nil {
		return Binding{}, err
	}
	name, err := p.expect(TokenIdent)
	if err != nil {
		return Binding{}, err
	}
	if _, err := p.expect(TokenAssign); err != nil {
		return Binding{}, err
	}
	typeTok := p.tok
	if _, err := p.expect(TokenIdent); err != nil {
		return Binding{}, err
	}
	vt, ok := varTypes[strings.ToUpper(typeTok.Text)]
	if !ok {
		return Binding{}, &SyntaxError{Template: src, Pos: typeTok.Pos, Msg: "unknown variable type " + typeTok.Text}
	}
	if p.tok.Kind != TokenClose {
		return Binding{}, p.errorf("expected }}, found " + p.describe())
	}
	if strings.TrimSpace(src[p.lex.pos:]) != "" {
		return Binding{}, &SyntaxError{Template: src, Pos: p.lex.pos, Msg: "unexpected text after }}"}
	}
	return Binding{Name: name.Text, Type: vt}, nil
}
