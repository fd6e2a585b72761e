package lam

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns source text into tokens. Line breaks become NEWLINE tokens
// (collapsed, never leading) except inside parentheses, where they are
// plain whitespace.
type Lexer struct {
	filename string
	src      string
	offset   int
	line     int
	col      int

	depth    int
	tokens   []Token
	comments []Comment
}

func NewLexer(filename, src string) *Lexer {
	return &Lexer{
		filename: filename,
		src:      src,
		line:     1,
		col:      1,
	}
}

// Tokenize lexes the whole source, ending with an EOF token.
func Tokenize(filename, src string) ([]Token, error) {
	toks, _, err := NewLexer(filename, src).Lex()
	return toks, err
}

// Lex returns the token stream and the comments encountered along the way.
func (l *Lexer) Lex() ([]Token, []Comment, error) {
	for {
		l.skipSpace()
		if l.offset >= len(l.src) {
			break
		}

		line, col := l.line, l.col
		r := l.peek()

		switch {
		case r == '\n':
			l.advance()
			if l.depth == 0 && len(l.tokens) > 0 && l.last().Kind != NEWLINE {
				l.emit(Token{Kind: NEWLINE, Text: "\n", Line: line, Col: col})
			}
		case r == '/' && strings.HasPrefix(l.src[l.offset:], "//"):
			l.comment(line)
		case r == lambdaRune || r == '\\':
			l.advance()
			l.emit(Token{Kind: LAMBDA, Text: string(r), Line: line, Col: col})
		case r == recursionRune:
			l.advance()
			l.emit(Token{Kind: RECURSION, Text: string(r), Line: line, Col: col})
		case isIdentStart(r):
			l.ident(line, col)
		case isDigit(r):
			if err := l.number(line, col); err != nil {
				return nil, nil, err
			}
		default:
			kind, ok := punctuation[r]
			if !ok {
				return nil, nil, newError(LexicalError, l.loc(line, col, 1),
					"unexpected character %q", r)
			}
			l.advance()
			switch kind {
			case LPAREN:
				l.depth++
			case RPAREN:
				if l.depth > 0 {
					l.depth--
				}
			}
			l.emit(Token{Kind: kind, Text: string(r), Line: line, Col: col})
		}
	}

	if len(l.tokens) > 0 && l.last().Kind == NEWLINE {
		l.tokens = l.tokens[:len(l.tokens)-1]
	}
	l.emit(Token{Kind: EOF, Line: l.line, Col: l.col})
	return l.tokens, l.comments, nil
}

var punctuation = map[rune]TokenKind{
	'.': DOT,
	'=': ASSIGN,
	'(': LPAREN,
	')': RPAREN,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'&': AMP,
	'|': PIPE,
}

func (l *Lexer) comment(line int) {
	trailing := len(l.tokens) > 0 && l.last().Kind != NEWLINE && l.last().Line == line

	start := l.offset + 2
	for l.offset < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
	text := strings.TrimRight(l.src[start:l.offset], " \t\r")
	l.comments = append(l.comments, Comment{Text: text, Line: line, Trailing: trailing})
}

func (l *Lexer) ident(line, col int) {
	start := l.offset
	for l.offset < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.offset]
	l.emit(Token{Kind: IDENT, Text: text, Line: line, Col: col})
}

// number lexes a decimal integer literal. Single underscores may separate
// digits; anything that glues onto the digits is malformed.
func (l *Lexer) number(line, col int) error {
	start := l.offset
	lastUnderscore := false
	malformed := false
	for l.offset < len(l.src) {
		r := l.peek()
		if r == '_' {
			if lastUnderscore {
				malformed = true
			}
			lastUnderscore = true
			l.advance()
			continue
		}
		if !isDigit(r) {
			break
		}
		lastUnderscore = false
		l.advance()
	}
	if lastUnderscore {
		malformed = true
	}

	// Fractions and things like 12abc are not numbers
	if l.offset < len(l.src) {
		r := l.peek()
		if r == '.' && l.offset+1 < len(l.src) && isDigit(rune(l.src[l.offset+1])) {
			l.advance()
			for l.offset < len(l.src) && (isDigit(l.peek()) || l.peek() == '_') {
				l.advance()
			}
			malformed = true
		}
		for l.offset < len(l.src) && isIdentPart(l.peek()) {
			l.advance()
			malformed = true
		}
	}

	text := l.src[start:l.offset]
	loc := l.loc(line, col, utf8.RuneCountInString(text))
	if malformed {
		return newError(LexicalError, loc, "malformed number %q", text)
	}

	n, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 10, 64)
	if err != nil {
		return newError(LexicalError, loc, "number %q out of range", text)
	}
	l.emit(Token{Kind: NUMBER, Text: text, Num: n, Line: line, Col: col})
	return nil
}

func (l *Lexer) skipSpace() {
	for l.offset < len(l.src) {
		r := l.peek()
		if r == '\n' {
			if l.depth == 0 {
				return
			}
		} else if !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

func (l *Lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

func (l *Lexer) last() Token {
	return l.tokens[len(l.tokens)-1]
}

func (l *Lexer) loc(line, col, length int) *SourceLocation {
	return &SourceLocation{Filename: l.filename, Line: line, Column: col, Length: length}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
