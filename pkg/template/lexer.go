package template

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// nbsp is accepted as whitespace between atoms; editors emit it around variables.
const nbsp = "&nbsp;"

var singleChar = map[byte]TokenKind{
	'+': TokenPlus, '-': TokenMinus, '*': TokenStar, '/': TokenSlash,
	'(': TokenLParen, ')': TokenRParen, ',': TokenComma, '=': TokenAssign,
	'>': TokenGt, '<': TokenLt,
}

// lexer tokenizes the inside of a {{ }} segment. It stops at "}}".
type lexer struct {
	src      string
	pos      int
	keywords bool
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		if strings.HasPrefix(l.src[l.pos:], nbsp) {
			l.pos += len(nbsp)
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) next() (Token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	rest := l.src[l.pos:]
	two := ""
	if len(rest) >= 2 {
		two = rest[:2]
	}
	switch two {
	case "}}":
		l.pos += 2
		return Token{Kind: TokenClose, Text: two, Pos: start}, nil
	case "==":
		l.pos += 2
		return Token{Kind: TokenEq, Text: two, Pos: start}, nil
	case "!=":
		l.pos += 2
		return Token{Kind: TokenNeq, Text: two, Pos: start}, nil
	case ">=":
		l.pos += 2
		return Token{Kind: TokenGte, Text: two, Pos: start}, nil
	case "<=":
		l.pos += 2
		return Token{Kind: TokenLte, Text: two, Pos: start}, nil
	}

	c := rest[0]
	if kind, ok := singleChar[c]; ok {
		l.pos++
		return Token{Kind: kind, Text: string(c), Pos: start}, nil
	}

	switch {
	case c == '"':
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return Token{}, &SyntaxError{Template: l.src, Pos: start, Msg: "unterminated string"}
		}
		l.pos += end + 2
		return Token{Kind: TokenString, Text: rest[1 : end+1], Pos: start}, nil
	case isDigit(c) || (c == '.' && len(rest) > 1 && isDigit(rest[1])):
		return l.number(start), nil
	case c == '.':
		l.pos++
		return Token{Kind: TokenDot, Text: ".", Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(rest)
	if r == '_' || unicode.IsLetter(r) {
		return l.ident(start), nil
	}
	return Token{}, &SyntaxError{Template: l.src, Pos: start, Msg: "unexpected character " + string(r)}
}

func (l *lexer) number(start int) Token {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	return Token{Kind: TokenNumber, Text: l.src[start:l.pos], Pos: start}
}

func (l *lexer) ident(start int) Token {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	text := l.src[start:l.pos]
	if l.keywords {
		if kind, ok := keywords[text]; ok {
			return Token{Kind: kind, Text: text, Pos: start}
		}
	}
	return Token{Kind: TokenIdent, Text: text, Pos: start}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
