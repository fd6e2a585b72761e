package lam

import "fmt"

// TokenKind represents the kind of token.
type TokenKind int

const (
	EOF TokenKind = iota
	NEWLINE

	IDENT
	NUMBER

	LAMBDA    // "λ" or "\"
	RECURSION // "𝑓"
	DOT
	ASSIGN
	LPAREN
	RPAREN

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	AMP
	PIPE
)

var tokenNames = map[TokenKind]string{
	EOF:       "end of input",
	NEWLINE:   "line break",
	IDENT:     "identifier",
	NUMBER:    "number",
	LAMBDA:    "'λ'",
	RECURSION: "'𝑓'",
	DOT:       "'.'",
	ASSIGN:    "'='",
	LPAREN:    "'('",
	RPAREN:    "')'",
	PLUS:      "'+'",
	MINUS:     "'-'",
	STAR:      "'*'",
	SLASH:     "'/'",
	AMP:       "'&'",
	PIPE:      "'|'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

const (
	lambdaRune    = 'λ'
	recursionRune = '𝑓'
)

// Token is a single lexical unit along with where it came from.
type Token struct {
	Kind TokenKind
	Text string
	Num  int64 // set for NUMBER
	Line int
	Col  int
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}

// startsOperand reports whether a token can begin an operand, which is what
// makes a preceding callee an application.
func (t Token) startsOperand() bool {
	switch t.Kind {
	case IDENT, NUMBER, LAMBDA, RECURSION, LPAREN:
		return true
	}
	return false
}

// Comment is a "//" line comment. The evaluator ignores comments; the
// formatter puts them back.
type Comment struct {
	Text     string // without the leading "//"
	Line     int
	Trailing bool // shares its line with code
}
