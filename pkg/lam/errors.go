package lam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrorKind classifies every failure the interpreter can report.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	NameError
	ArithmeticError
	BuiltinError
	InputError
	TypeError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case NameError:
		return "name error"
	case ArithmeticError:
		return "arithmetic error"
	case BuiltinError:
		return "builtin error"
	case InputError:
		return "input error"
	case TypeError:
		return "type error"
	default:
		return fmt.Sprintf("error(%d)", int(k))
	}
}

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int // Length of the syntax node that caused the error
}

func (loc *SourceLocation) String() string {
	if loc == nil {
		return ""
	}
	if loc.Filename == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

// Error is the single error type raised by the lexer, parser and evaluator.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location *SourceLocation

	// incomplete is set when the parser ran out of input mid-statement, so
	// an interactive reader can ask for another line instead of failing.
	incomplete bool
	inner      error
}

func (e *Error) Error() string {
	if e.Location == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Location)
}

func (e *Error) Unwrap() error {
	return e.inner
}

func newError(kind ErrorKind, loc *SourceLocation, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// wrapError turns an arbitrary failure (e.g. an I/O error surfaced by a
// builtin) into an *Error of the given kind, keeping it in the chain.
func wrapError(kind ErrorKind, loc *SourceLocation, err error) *Error {
	return &Error{
		Kind:     kind,
		Message:  err.Error(),
		Location: loc,
		inner:    err,
	}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind, true
	}
	return 0, false
}

// IsIncomplete reports whether err was caused by input ending in the middle
// of a statement, e.g. an unclosed parenthesis.
func IsIncomplete(err error) bool {
	var lerr *Error
	return errors.As(err, &lerr) && lerr.incomplete
}

// SourceError represents an error with source location information
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string // The source code of the file
}

// NewSourceError creates a new SourceError
func NewSourceError(inner error, location *SourceLocation, source string) *SourceError {
	return &SourceError{
		Inner:    inner,
		Location: location,
		Source:   source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	return e.Inner.Error()
}

// FormatWithHighlighting returns a nicely formatted error with syntax highlighting
func (e *SourceError) FormatWithHighlighting() string {
	if e.Location == nil {
		return e.Inner.Error()
	}

	if e.Source == "" && e.Location.Filename != "" {
		contents, err := os.ReadFile(e.Location.Filename)
		if err == nil {
			e.Source = string(contents)
		}
	}

	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	// Colors for terminal output
	const (
		red   = "\033[31m"
		blue  = "\033[34m"
		bold  = "\033[1m"
		reset = "\033[0m"
		dim   = "\033[2m"
	)

	headline := e.Inner.Error()
	var lerr *Error
	if errors.As(e.Inner, &lerr) {
		headline = fmt.Sprintf("%s: %s", lerr.Kind, lerr.Message)
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s%sError:%s %s\n", bold, red, reset, headline))
	result.WriteString(fmt.Sprintf("  %s%s--> %s%s\n", dim, blue, e.Location, reset))
	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		paddedLineStr := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			result.WriteString(fmt.Sprintf(" %s%s%s%s | %s%s\n",
				dim, blue, bold, paddedLineStr, reset, lines[i-1]))

			// 1 space + 3 for line number + " | " + column offset
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Location.Length))
			result.WriteString(fmt.Sprintf("%s%s%s%s%s\n",
				dim, padding, red, underline, reset))
		} else {
			result.WriteString(fmt.Sprintf(" %s%s | %s%s\n",
				dim, paddedLineStr, lines[i-1], reset))
		}
	}

	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// EvalContext carries evaluation context including source information
type EvalContext struct {
	Filename string
	Source   string
}

// NewEvalContext creates a new evaluation context
func NewEvalContext(filename, source string) *EvalContext {
	return &EvalContext{
		Filename: filename,
		Source:   source,
	}
}

type evalContextKey struct{}

// WithEvalContext stores the EvalContext in the Go context
func WithEvalContext(ctx context.Context, evalCtx *EvalContext) context.Context {
	return context.WithValue(ctx, evalContextKey{}, evalCtx)
}

// GetEvalContext retrieves the EvalContext from the Go context
func GetEvalContext(ctx context.Context) *EvalContext {
	if evalCtx, ok := ctx.Value(evalContextKey{}).(*EvalContext); ok {
		return evalCtx
	}
	return nil
}

// CreateSourceError attaches the program source to err so it can be
// rendered with the offending line highlighted.
func (ctx *EvalContext) CreateSourceError(err error) error {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr
	}

	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Location == nil {
		return err
	}

	return NewSourceError(err, lerr.Location, ctx.Source)
}

type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}

// WithEvalErrorHandling wraps an Eval method implementation, attaching the
// node's location to location-less errors raised beneath it.
func WithEvalErrorHandling(node SourceLocatable, fn func() (Value, error)) (Value, error) {
	val, err := fn()
	if err != nil {
		var lerr *Error
		if errors.As(err, &lerr) && lerr.Location == nil {
			lerr.Location = node.GetSourceLocation()
		}
		return nil, err
	}
	return val, nil
}
