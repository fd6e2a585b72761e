package lam

import "context"

type Node interface {
	GetSourceLocation() *SourceLocation
}

// Expr is an expression node. Evaluating it never writes to env.
type Expr interface {
	Node
	Eval(ctx context.Context, env *Env) (Value, error)
}

// Statement is a top-level form: a binding or a bare expression.
type Statement interface {
	Node
	Exec(ctx context.Context, global *Env) (Value, error)

	// Span returns the first and last source lines the statement occupies.
	Span() (int, int)
}

// Program is a parsed source file.
type Program struct {
	Filename   string
	Statements []Statement
	Comments   []Comment
}

// Binding is a top-level "name = expr".
type Binding struct {
	Name    string
	Value   Expr
	Loc     *SourceLocation
	EndLine int
}

var _ Statement = (*Binding)(nil)

func (b *Binding) GetSourceLocation() *SourceLocation { return b.Loc }
func (b *Binding) Span() (int, int)                   { return b.Loc.Line, b.EndLine }

// ExprStatement is an expression evaluated for its effects.
type ExprStatement struct {
	Expr      Expr
	StartLine int
	EndLine   int
}

var _ Statement = (*ExprStatement)(nil)

func (s *ExprStatement) GetSourceLocation() *SourceLocation { return s.Expr.GetSourceLocation() }
func (s *ExprStatement) Span() (int, int)                   { return s.StartLine, s.EndLine }
