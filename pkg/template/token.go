package template

// TokenKind identifies a lexical token inside a {{ }} segment.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenString
	TokenIdent
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLParen
	TokenRParen
	TokenComma
	TokenDot
	TokenAssign
	TokenEq
	TokenNeq
	TokenGt
	TokenGte
	TokenLt
	TokenLte
	TokenAnd
	TokenOr
	TokenTrue
	TokenFalse
	TokenDefault
	TokenClose // }}
)

var tokenNames = map[TokenKind]string{
	TokenEOF:     "end of template",
	TokenNumber:  "number",
	TokenString:  "string",
	TokenIdent:   "name",
	TokenPlus:    "+",
	TokenMinus:   "-",
	TokenStar:    "*",
	TokenSlash:   "/",
	TokenLParen:  "(",
	TokenRParen:  ")",
	TokenComma:   ",",
	TokenDot:     ".",
	TokenAssign:  "=",
	TokenEq:      "==",
	TokenNeq:     "!=",
	TokenGt:      ">",
	TokenGte:     ">=",
	TokenLt:      "<",
	TokenLte:     "<=",
	TokenAnd:     "AND",
	TokenOr:      "OR",
	TokenTrue:    "TRUE",
	TokenFalse:   "FALSE",
	TokenDefault: "DEFAULT",
	TokenClose:   "}}",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return "unknown"
}

// keywords are only recognised by the logic grammar.
var keywords = map[string]TokenKind{
	"AND":     TokenAnd,
	"OR":      TokenOr,
	"TRUE":    TokenTrue,
	"FALSE":   TokenFalse,
	"DEFAULT": TokenDefault,
}

// Token is a lexical token with its byte offset in the template.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}
