package template

import (
	"strconv"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Segment is either literal text or a {{ }} expression of a display template.
type Segment struct {
	Literal string
	Expr    Expr // nil for literal segments
}

// Display is a parsed display template.
type Display struct {
	Source   string
	Segments []Segment
}

// Logic is a parsed logic template.
type Logic struct {
	Source string
	Root   Expr

	// Mixed is set when AND and OR are chained without parentheses.
	// Such chains evaluate strictly left to right.
	Mixed bool
}

// IsDefault reports whether the template is a DEFAULT clause.
func (l *Logic) IsDefault() bool {
	_, ok := l.Root.(*DefaultExpr)
	return ok
}

type parser struct {
	lex   *lexer
	tok   Token
	logic bool
	mixed bool
}

func newParser(src string, pos int, logic bool) (*parser, error) {
	p := &parser{lex: &lexer{src: src, pos: pos, keywords: logic}, logic: logic}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(msg string) error {
	return &SyntaxError{Template: p.lex.src, Pos: p.tok.Pos, Msg: msg}
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	if p.tok.Kind != kind {
		return Token{}, p.errorf("expected " + kind.String() + ", found " + p.describe())
	}
	tok := p.tok
	return tok, p.advance()
}

func (p *parser) describe() string {
	if p.tok.Kind == TokenEOF {
		return "end of template"
	}
	return strconv.Quote(p.tok.Text)
}

// ParseDisplay parses literal text interleaved with {{ expr }} segments.
func ParseDisplay(src string) (*Display, error) {
	d := &Display{Source: src}
	i := 0
	for i < len(src) {
		idx := strings.Index(src[i:], openDelim)
		if idx < 0 {
			d.Segments = append(d.Segments, Segment{Literal: src[i:]})
			break
		}
		if idx > 0 {
			d.Segments = append(d.Segments, Segment{Literal: src[i : i+idx]})
		}
		p, err := newParser(src, i+idx+len(openDelim), false)
		if err != nil {
			return nil, err
		}
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != TokenClose {
			return nil, p.errorf("expected }}, found " + p.describe())
		}
		d.Segments = append(d.Segments, Segment{Expr: e})
		i = p.lex.pos
	}
	return d, nil
}

// ParseLogic parses a template that is a single {{ }} boolean expression.
func ParseLogic(src string) (*Logic, error) {
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, openDelim) {
		return nil, &SyntaxError{Template: src, Pos: 0, Msg: "logic template must start with {{"}
	}
	start := strings.Index(src, openDelim) + len(openDelim)
	p, err := newParser(src, start, true)
	if err != nil {
		return nil, err
	}
	root, err := p.parseBool()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokenClose {
		return nil, p.errorf("expected }}, found " + p.describe())
	}
	if strings.TrimSpace(src[p.lex.pos:]) != "" {
		return nil, &SyntaxError{Template: src, Pos: p.lex.pos, Msg: "unexpected text after }}"}
	}
	return &Logic{Source: src, Root: root, Mixed: p.mixed}, nil
}

// parseBool parses AND/OR chains. Both connectives share one precedence level
// and associate to the left.
func (p *parser) parseBool() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	var seen TokenKind
	for {
		switch p.tok.Kind {
		case TokenDefault:
			if err := p.advance(); err != nil {
				return nil, err
			}
			left = &DefaultExpr{Operand: left}
		case TokenAnd, TokenOr:
			op := p.tok.Kind
			if seen != 0 && seen != op {
				p.mixed = true
			}
			seen = op
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Left: left, Op: op, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	switch op := p.tok.Kind; op {
	case TokenEq, TokenNeq, TokenGt, TokenGte, TokenLt, TokenLte:
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Op: op, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokenPlus || p.tok.Kind == TokenMinus {
		op := p.tok.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokenStar || p.tok.Kind == TokenSlash {
		op := p.tok.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.Kind == TokenMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NegExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.tok
	switch tok.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf("invalid number " + strconv.Quote(tok.Text))
		}
		return &LiteralExpr{Value: f}, p.advance()
	case TokenString:
		return &LiteralExpr{Value: tok.Text}, p.advance()
	case TokenTrue, TokenFalse:
		return &LiteralExpr{Value: tok.Kind == TokenTrue}, p.advance()
	case TokenDefault:
		return &DefaultExpr{}, p.advance()
	case TokenIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokenDot {
			return p.parseLookup(tok.Text)
		}
		return &VarExpr{Name: tok.Text}, nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var inner Expr
		var err error
		if p.logic {
			// Parentheses reset the AND/OR chain.
			inner, err = p.parseBool()
		} else {
			inner, err = p.parseSum()
		}
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf("unexpected " + p.describe())
}

// parseLookup parses Table.Column(col=expr, ...) after the table name.
func (p *parser) parseLookup(table string) (Expr, error) {
	if err := p.advance(); err != nil { // .
		return nil, err
	}
	col, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	lookup := &LookupExpr{Table: table, Column: col.Text}
	for p.tok.Kind != TokenRParen {
		if len(lookup.Args) > 0 {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenAssign); err != nil {
			return nil, err
		}
		value, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		lookup.Args = append(lookup.Args, LookupArg{Column: name.Text, Value: value})
	}
	return lookup, p.advance()
}
