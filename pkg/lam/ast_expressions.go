package lam

import "context"

// Number is an integer literal.
type Number struct {
	Value int64
	Loc   *SourceLocation
}

var _ Expr = (*Number)(nil)

func (n *Number) GetSourceLocation() *SourceLocation { return n.Loc }

func (n *Number) Eval(ctx context.Context, env *Env) (Value, error) {
	return NumValue{Val: n.Value}, nil
}

// Variable is a reference to a bound name. Names bound nowhere fall back to
// the builtins.
type Variable struct {
	Name string
	Loc  *SourceLocation
}

var _ Expr = (*Variable)(nil)

func (v *Variable) GetSourceLocation() *SourceLocation { return v.Loc }

func (v *Variable) Eval(ctx context.Context, env *Env) (Value, error) {
	if val, ok := env.Get(v.Name); ok {
		return val, nil
	}
	if b, ok := LookupBuiltin(v.Name); ok {
		return b, nil
	}
	return nil, newError(NameError, v.Loc, "unbound name %q", v.Name)
}

// Abstraction is "λparam. body".
type Abstraction struct {
	Param string
	Body  Expr
	Loc   *SourceLocation
}

var _ Expr = (*Abstraction)(nil)

func (a *Abstraction) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *Abstraction) Eval(ctx context.Context, env *Env) (Value, error) {
	return &Closure{
		Param: a.Param,
		Body:  a.Body,
		Env:   env,
		Loc:   a.Loc,
	}, nil
}

// Application applies Callee to Arg. The callee is evaluated first; if it
// is Halt the argument is never evaluated.
type Application struct {
	Callee Expr
	Arg    Expr
	Loc    *SourceLocation
}

var _ Expr = (*Application)(nil)

func (a *Application) GetSourceLocation() *SourceLocation { return a.Loc }

func (a *Application) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(a, func() (Value, error) {
		callee, err := a.Callee.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if IsHalt(callee) {
			return Halt, nil
		}

		arg, err := a.Arg.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if IsHalt(arg) {
			return Halt, nil
		}

		fn, ok := callee.(Callable)
		if !ok {
			return nil, newError(TypeError, a.Callee.GetSourceLocation(),
				"cannot apply %s to an argument", callee)
		}
		return fn.Call(ctx, arg)
	})
}

// RecursiveCall is "𝑓(arg)": apply the running abstraction again.
type RecursiveCall struct {
	Arg Expr
	Loc *SourceLocation
}

var _ Expr = (*RecursiveCall)(nil)

func (r *RecursiveCall) GetSourceLocation() *SourceLocation { return r.Loc }

// Eval handles a recursion call that is not the whole body of its
// abstraction. Re-applying the closure can only ever end in Halt, so rather
// than calling it here the rest of the body is abandoned and the running
// Closure.Call re-enters with the new argument.
func (r *RecursiveCall) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(r, func() (Value, error) {
		arg, err := r.argument(ctx, env)
		if err != nil {
			return nil, err
		}
		if IsHalt(arg) || arg.(NumValue).Val == 0 {
			return Halt, nil
		}

		self := env.Running()
		if self == nil {
			return nil, newError(SyntaxError, r.Loc, "𝑓 used outside of an abstraction")
		}
		return nil, &reentry{closure: self, arg: arg}
	})
}

// reentry unwinds evaluation back to the Call of closure, which loops
// around with arg.
type reentry struct {
	closure *Closure
	arg     Value
}

func (r *reentry) Error() string {
	return "𝑓 re-entered outside of its abstraction"
}

// argument evaluates the recursion argument, which must be a number or Halt.
func (r *RecursiveCall) argument(ctx context.Context, env *Env) (Value, error) {
	val, err := r.Arg.Eval(ctx, env)
	if err != nil {
		return nil, err
	}
	if IsHalt(val) {
		return Halt, nil
	}
	if _, ok := val.(NumValue); !ok {
		return nil, newError(TypeError, r.Arg.GetSourceLocation(),
			"𝑓 takes a number, got %s", val)
	}
	return val, nil
}
