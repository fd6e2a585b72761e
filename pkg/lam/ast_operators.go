package lam

import "context"

// Operator is a binary arithmetic operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
)

func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	}
	return "?"
}

// Binding strength; higher binds tighter.
const (
	precLowest = iota
	precSum
	precProduct
	precBitwise
	precAtom
)

func (op Operator) precedence() int {
	switch op {
	case OpAdd, OpSub:
		return precSum
	case OpMul, OpDiv:
		return precProduct
	default:
		return precBitwise
	}
}

var operatorTokens = map[TokenKind]Operator{
	PLUS:  OpAdd,
	MINUS: OpSub,
	STAR:  OpMul,
	SLASH: OpDiv,
	AMP:   OpAnd,
	PIPE:  OpOr,
}

// BinaryOp applies an operator to two numbers.
type BinaryOp struct {
	Op    Operator
	Left  Expr
	Right Expr
	Loc   *SourceLocation // location of the operator
}

var _ Expr = (*BinaryOp)(nil)

func (b *BinaryOp) GetSourceLocation() *SourceLocation { return b.Loc }

// Eval evaluates left then right. A Halt operand makes the whole operation
// Halt; a Halt on the left means the right is never evaluated.
func (b *BinaryOp) Eval(ctx context.Context, env *Env) (Value, error) {
	return WithEvalErrorHandling(b, func() (Value, error) {
		leftVal, err := b.Left.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if IsHalt(leftVal) {
			return Halt, nil
		}

		rightVal, err := b.Right.Eval(ctx, env)
		if err != nil {
			return nil, err
		}
		if IsHalt(rightVal) {
			return Halt, nil
		}

		l, ok := leftVal.(NumValue)
		if !ok {
			return nil, newError(TypeError, b.Left.GetSourceLocation(),
				"left side of %s must be a number, got %s", b.Op, leftVal)
		}
		r, ok := rightVal.(NumValue)
		if !ok {
			return nil, newError(TypeError, b.Right.GetSourceLocation(),
				"right side of %s must be a number, got %s", b.Op, rightVal)
		}

		return b.apply(l.Val, r.Val)
	})
}

func (b *BinaryOp) apply(l, r int64) (Value, error) {
	switch b.Op {
	case OpAdd:
		return Num(l + r), nil
	case OpSub:
		return Num(l - r), nil
	case OpMul:
		return Num(l * r), nil
	case OpDiv:
		if r == 0 {
			return nil, newError(ArithmeticError, b.Loc, "division by zero")
		}
		return Num(l / r), nil
	case OpAnd:
		return Num(l & r), nil
	case OpOr:
		return Num(l | r), nil
	}
	return nil, newError(SyntaxError, b.Loc, "unknown operator %s", b.Op)
}
