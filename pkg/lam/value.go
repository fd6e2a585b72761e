package lam

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Value represents a runtime value in the language: a number, a closure, a
// builtin, or the halt signal.
type Value interface {
	String() string
}

// Callable is any value that can be applied to one argument.
type Callable interface {
	Value
	Call(ctx context.Context, arg Value) (Value, error)
}

// NumValue is a whole number.
type NumValue struct {
	Val int64
}

func (n NumValue) String() string {
	return strconv.FormatInt(n.Val, 10)
}

// Num is shorthand for NumValue{Val: n}.
func Num(n int64) NumValue {
	return NumValue{Val: n}
}

// HaltValue is the signal produced when a recursion reaches 0. It is not a
// number and not callable; anything that would consume it yields it
// instead.
type HaltValue struct{}

func (HaltValue) String() string {
	return "HALT"
}

// Halt is the one halt signal.
var Halt Value = HaltValue{}

// IsHalt reports whether v is the halt signal.
func IsHalt(v Value) bool {
	_, ok := v.(HaltValue)
	return ok
}

// Closure is an abstraction paired with the scope it was evaluated in.
type Closure struct {
	Param string
	Body  Expr
	Env   *Env
	Loc   *SourceLocation
}

var _ Callable = (*Closure)(nil)

func (c *Closure) String() string {
	return fmt.Sprintf("λ%s. %s", c.Param, formatExpr(c.Body, DefaultFormatOptions))
}

// Call applies the closure. A closure whose parameter is named after a
// builtin passes its body's result on to that builtin. When the body is a
// recursion call, its argument becomes the result and the closure is
// re-entered with it until it reaches 0, at which point the application
// yields Halt. A recursion call elsewhere in the body re-enters the same
// loop without forwarding anything.
func (c *Closure) Call(ctx context.Context, arg Value) (Value, error) {
	if IsHalt(arg) {
		return Halt, nil
	}

	forward, forwards := LookupBuiltin(c.Param)
	recur, tail := c.Body.(*RecursiveCall)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scope := c.Env.call(c, arg)

		var result Value
		var err error
		if tail {
			result, err = recur.argument(ctx, scope)
		} else {
			result, err = c.Body.Eval(ctx, scope)
		}
		if err != nil {
			var re *reentry
			if errors.As(err, &re) && re.closure == c {
				arg = re.arg
				continue
			}
			return nil, err
		}
		if IsHalt(result) {
			return Halt, nil
		}

		if forwards {
			forwarded, err := forward.Call(ctx, result)
			if err != nil {
				return nil, err
			}
			if !tail {
				return forwarded, nil
			}
		}

		if !tail {
			return result, nil
		}

		if result.(NumValue).Val == 0 {
			return Halt, nil
		}
		arg = result
	}
}

// BuiltinValue is one of the five builtins used as a first-class value.
type BuiltinValue struct {
	Builtin Builtin
}

var _ Callable = BuiltinValue{}

func (b BuiltinValue) String() string {
	return "<builtin " + b.Builtin.String() + ">"
}

func (b BuiltinValue) Call(ctx context.Context, arg Value) (Value, error) {
	if IsHalt(arg) {
		return Halt, nil
	}
	return b.Builtin.invoke(ctx, arg)
}

// LookupBuiltin resolves a reserved name to its builtin value.
func LookupBuiltin(name string) (BuiltinValue, bool) {
	b, ok := builtinsByName[name]
	if !ok {
		return BuiltinValue{}, false
	}
	return BuiltinValue{Builtin: b}, true
}
