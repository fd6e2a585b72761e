package lam

import (
	"strconv"
	"strings"
)

// FormatOptions tweaks the canonical layout.
type FormatOptions struct {
	// Lambda is the abstraction symbol to emit: "λ" or "\".
	Lambda string `toml:"lambda"`
}

var DefaultFormatOptions = FormatOptions{Lambda: "λ"}

// Formatter lays out a parsed program one statement per line, putting its
// comments back where they were.
type Formatter struct {
	opts     FormatOptions
	buf      strings.Builder
	comments []Comment
	next     int // index of the next comment to emit
	lastLine int // last source line emitted
}

// FormatFile parses and formats a source file. Formatting the result again
// yields the same text.
func FormatFile(filename string, source []byte, opts FormatOptions) (string, error) {
	prog, err := Parse(filename, string(source))
	if err != nil {
		return "", err
	}
	return FormatProgram(prog, opts), nil
}

func FormatProgram(prog *Program, opts FormatOptions) string {
	f := &Formatter{opts: opts, comments: prog.Comments}

	for i, stmt := range prog.Statements {
		start, end := stmt.Span()

		// Comments above the statement, and any from inside it since the
		// statement itself comes out on one line.
		for f.next < len(f.comments) {
			c := f.comments[f.next]
			if c.Line >= start && (c.Line > end || c.Trailing && c.Line == end) {
				break
			}
			f.line(c.Line, "//"+c.Text)
			f.next++
		}

		f.line(start, f.statement(stmt))
		f.lastLine = end

		// A trailing comment goes with the last statement on its line.
		lastOnLine := i == len(prog.Statements)-1
		if !lastOnLine {
			nextStart, _ := prog.Statements[i+1].Span()
			lastOnLine = nextStart > end
		}
		if lastOnLine && f.next < len(f.comments) {
			if c := f.comments[f.next]; c.Trailing && c.Line == end {
				f.trailing(c.Text)
				f.next++
			}
		}
	}

	for ; f.next < len(f.comments); f.next++ {
		c := f.comments[f.next]
		f.line(c.Line, "//"+c.Text)
	}

	if f.buf.Len() > 0 {
		f.buf.WriteString("\n")
	}
	return f.buf.String()
}

// line starts an output line for source line n, keeping at most one blank
// line from any run of them.
func (f *Formatter) line(n int, text string) {
	if f.buf.Len() > 0 {
		f.buf.WriteString("\n")
		if n > f.lastLine+1 {
			f.buf.WriteString("\n")
		}
	}
	f.buf.WriteString(text)
	f.lastLine = n
}

func (f *Formatter) trailing(text string) {
	f.buf.WriteString(" //")
	f.buf.WriteString(text)
}

func (f *Formatter) statement(stmt Statement) string {
	switch s := stmt.(type) {
	case *Binding:
		return s.Name + " = " + formatExpr(s.Value, f.opts)
	case *ExprStatement:
		return formatExpr(s.Expr, f.opts)
	}
	return ""
}

// FormatExpr renders an expression in canonical form.
func FormatExpr(e Expr, opts FormatOptions) string {
	return formatExpr(e, opts)
}

func formatExpr(e Expr, opts FormatOptions) string {
	switch e := e.(type) {
	case *Number:
		return strconv.FormatInt(e.Value, 10)
	case *Variable:
		return e.Name
	case *Abstraction:
		return opts.Lambda + e.Param + ". " + formatExpr(e.Body, opts)
	case *Application:
		return "(" + formatExpr(e.Callee, opts) + ") " + formatExpr(e.Arg, opts)
	case *RecursiveCall:
		return string(recursionRune) + "(" + formatExpr(e.Arg, opts) + ")"
	case *BinaryOp:
		prec := e.Op.precedence()
		return formatOperand(e.Left, prec, false, opts) +
			" " + e.Op.String() + " " +
			formatOperand(e.Right, prec, true, opts)
	}
	return ""
}

// formatOperand parenthesizes an operand of a binary operator where leaving
// the parentheses out would parse differently. Abstractions and
// applications extend to the right, so they always need them.
func formatOperand(e Expr, parentPrec int, right bool, opts FormatOptions) string {
	wrap := false
	switch e := e.(type) {
	case *Abstraction, *Application:
		wrap = true
	case *BinaryOp:
		prec := e.Op.precedence()
		wrap = prec < parentPrec || right && prec == parentPrec
	}
	if wrap {
		return "(" + formatExpr(e, opts) + ")"
	}
	return formatExpr(e, opts)
}
