package lam

import (
	"unicode/utf8"
)

// Parser is a recursive-descent parser over a token stream.
//
//	program    = { statement [ NEWLINE ] } EOF
//	statement  = IDENT "=" expr | expr
//	expr       = binary(precSum)
//	binary(p)  = operand { op(p) binary(p+1) }    (left-associative)
//	operand    = callee [ expr ]                  (argument only if an operand follows)
//	           | NUMBER | λ IDENT "." expr | 𝑓 "(" expr ")"
//	callee     = IDENT | "(" expr ")"
//
// The argument of an application and the body of an abstraction both
// extend as far right as the enclosing group or statement allows.
type Parser struct {
	filename string
	tokens   []Token
	pos      int

	// abstraction nesting, for rejecting 𝑓 outside of any body
	depth int
}

func NewParser(filename string, tokens []Token) *Parser {
	return &Parser{filename: filename, tokens: tokens}
}

// Parse lexes and parses a whole source file.
func Parse(filename, src string) (*Program, error) {
	tokens, comments, err := NewLexer(filename, src).Lex()
	if err != nil {
		return nil, err
	}
	stmts, err := NewParser(filename, tokens).ParseStatements()
	if err != nil {
		return nil, err
	}
	return &Program{
		Filename:   filename,
		Statements: stmts,
		Comments:   comments,
	}, nil
}

// ParseStatements parses tokens up to EOF.
func (p *Parser) ParseStatements() ([]Statement, error) {
	var stmts []Statement
	for {
		p.skipNewlines()
		if p.peek().Kind == EOF {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		// Numbers and recursion calls take no argument, so an operand
		// right after one starts the next statement on the same line.
		switch tok := p.peek(); {
		case tok.Kind == NEWLINE, tok.Kind == EOF, tok.startsOperand():
		case tok.Kind == RPAREN:
			return nil, p.errorAt(tok, "unmatched ')'")
		default:
			return nil, p.errorAt(tok, "unexpected %s after statement", tok)
		}
	}
}

func (p *Parser) parseStatement() (Statement, error) {
	start := p.peek()
	if start.Kind == IDENT && p.peekAt(1).Kind == ASSIGN {
		p.next()
		p.next()
		if _, reserved := builtinsByName[start.Text]; reserved {
			return nil, p.errorAt(start, "cannot bind reserved name %q", start.Text)
		}
		p.skipNewlines()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Binding{
			Name:    start.Text,
			Value:   value,
			Loc:     p.loc(start),
			EndLine: p.prev().Line,
		}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ExprStatement{Expr: expr, StartLine: start.Line, EndLine: p.prev().Line}, nil
}

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseBinary(precSum)
}

func (p *Parser) parseBinary(prec int) (Expr, error) {
	if prec > precBitwise {
		return p.parseOperand()
	}

	left, err := p.parseBinary(prec + 1)
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		op, ok := operatorTokens[tok.Kind]
		if !ok || op.precedence() != prec {
			return left, nil
		}
		p.next()
		p.skipNewlines()

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right, Loc: p.loc(tok)}
	}
}

func (p *Parser) parseOperand() (Expr, error) {
	tok := p.next()
	switch tok.Kind {
	case NUMBER:
		return &Number{Value: tok.Num, Loc: p.loc(tok)}, nil

	case IDENT:
		return p.parseApplication(&Variable{Name: tok.Text, Loc: p.loc(tok)}, tok)

	case LPAREN:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')' to close the '(' at %d:%d", tok.Line, tok.Col); err != nil {
			return nil, err
		}
		return p.parseApplication(inner, tok)

	case LAMBDA:
		return p.parseAbstraction(tok)

	case RECURSION:
		return p.parseRecursion(tok)

	case RPAREN:
		return nil, p.errorAt(tok, "unmatched ')'")

	default:
		return nil, p.errorAt(tok, "unexpected %s", tok)
	}
}

// parseApplication applies callee to the following expression, if there is
// one.
func (p *Parser) parseApplication(callee Expr, start Token) (Expr, error) {
	if !p.peek().startsOperand() {
		return callee, nil
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Application{Callee: callee, Arg: arg, Loc: p.loc(start)}, nil
}

func (p *Parser) parseAbstraction(start Token) (Expr, error) {
	param, err := p.expect(IDENT, "a parameter name after %s", start.Kind)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(DOT, "'.' after the parameter %q", param.Text); err != nil {
		return nil, err
	}
	p.skipNewlines()

	p.depth++
	body, err := p.parseExpr()
	p.depth--
	if err != nil {
		return nil, err
	}
	return &Abstraction{Param: param.Text, Body: body, Loc: p.loc(start)}, nil
}

func (p *Parser) parseRecursion(start Token) (Expr, error) {
	if p.depth == 0 {
		return nil, p.errorAt(start, "𝑓 can only be used inside an abstraction")
	}
	open, err := p.expect(LPAREN, "'(' after 𝑓")
	if err != nil {
		return nil, err
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' to close the '(' at %d:%d", open.Line, open.Col); err != nil {
		return nil, err
	}
	return &RecursiveCall{Arg: arg, Loc: p.loc(start)}, nil
}

func (p *Parser) expect(kind TokenKind, wantFormat string, args ...any) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		err := p.errorAt(tok, "expected "+wantFormat+", got %s", append(args, tok)...)
		return Token{}, err
	}
	return p.next(), nil
}

func (p *Parser) skipNewlines() {
	for p.peek().Kind == NEWLINE {
		p.pos++
	}
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) prev() Token {
	if p.pos == 0 {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) loc(tok Token) *SourceLocation {
	length := utf8.RuneCountInString(tok.Text)
	if length == 0 {
		length = 1
	}
	return &SourceLocation{
		Filename: p.filename,
		Line:     tok.Line,
		Column:   tok.Col,
		Length:   length,
	}
}

// errorAt reports a syntax error at tok. Running into the end of input
// marks the error as incomplete.
func (p *Parser) errorAt(tok Token, format string, args ...any) *Error {
	err := newError(SyntaxError, p.loc(tok), format, args...)
	err.incomplete = tok.Kind == EOF
	return err
}
