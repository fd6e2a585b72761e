package lam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kr/pretty"

	"github.com/vito/lam/pkg/ioctx"
)

// Interpreter executes programs against a global environment that persists
// from one Run to the next.
type Interpreter struct {
	Global  *Env
	Runtime *Runtime
}

func NewInterpreter(config RuntimeConfig) *Interpreter {
	return &Interpreter{
		Global:  NewEnv(),
		Runtime: &Runtime{Config: config},
	}
}

// Reset forgets every global binding.
func (i *Interpreter) Reset() {
	i.Global = NewEnv()
}

// Run executes the program's statements in order, stopping at the first
// error. When ctx carries an EvalContext, located errors come back as
// *SourceError.
func (i *Interpreter) Run(ctx context.Context, prog *Program) error {
	for _, stmt := range prog.Statements {
		if _, err := i.Exec(ctx, stmt); err != nil {
			if evalCtx := GetEvalContext(ctx); evalCtx != nil {
				return evalCtx.CreateSourceError(err)
			}
			return err
		}
	}
	return nil
}

// Exec executes one statement and returns the value it produced.
func (i *Interpreter) Exec(ctx context.Context, stmt Statement) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stmt.Exec(WithRuntime(ctx, i.Runtime), i.Global)
}

func (b *Binding) Exec(ctx context.Context, global *Env) (Value, error) {
	slog.Debug("executing binding", "name", b.Name, "at", b.Loc)

	val, err := b.Value.Eval(ctx, global)
	if err != nil {
		return nil, err
	}
	global.Set(b.Name, val)

	slog.Debug("bound", "name", b.Name, "value", val.String())
	return val, nil
}

func (s *ExprStatement) Exec(ctx context.Context, global *Env) (Value, error) {
	slog.Debug("executing expression", "at", s.Expr.GetSourceLocation())

	val, err := s.Expr.Eval(ctx, global)
	if err != nil {
		return nil, err
	}
	if IsHalt(val) {
		slog.Debug("expression halted", "at", s.Expr.GetSourceLocation())
	}
	return val, nil
}

// RunFile runs the program at filePath with the lam.toml that applies to
// its directory.
func RunFile(ctx context.Context, filePath string, debug bool) error {
	config, err := ConfigFor(filepath.Dir(filePath))
	if err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}

	sourceBytes, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	return RunSource(ctx, filePath, string(sourceBytes), config, debug)
}

// RunSource parses and runs source in a fresh interpreter. Errors carrying a
// location are returned as *SourceError.
func RunSource(ctx context.Context, filename, source string, config *ProjectConfig, debug bool) error {
	evalCtx := NewEvalContext(filename, source)

	prog, err := Parse(filename, source)
	if err != nil {
		return evalCtx.CreateSourceError(err)
	}

	if debug {
		_, _ = pretty.Fprintf(ioctx.StderrFromContext(ctx), "%# v\n", prog)
	}

	interp := NewInterpreter(config.Runtime)
	if err := interp.Run(WithEvalContext(ctx, evalCtx), prog); err != nil {
		var lerr *Error
		if !errors.As(err, &lerr) {
			return fmt.Errorf("evaluation error: %w", err)
		}
		return err
	}

	slog.Debug("evaluation completed", "statements", len(prog.Statements))
	return nil
}
