package object

import (
	"fmt"
	"math"

	"github.com/substrate-lang/substrate/runtime"
)

// ---------------------------------------------------------------------------
// Operator semantics shared by the bundled languages
// ---------------------------------------------------------------------------

// Operate applies an operator lexeme to evaluated operands. One operand
// selects the unary meaning, two the binary one. Unknown operators and
// capability mismatches surface as ordinary errors.
func Operate(op string, operands []runtime.Value) (runtime.Value, error) {
	switch len(operands) {
	case 1:
		return unary(op, operands[0])
	case 2:
		return binary(op, operands[0], operands[1])
	}
	return nil, fmt.Errorf("operator %q applied to %d operands", op, len(operands))
}

func unary(op string, v runtime.Value) (runtime.Value, error) {
	switch op {
	case "-":
		n, err := AsNumber("unary -", v)
		if err != nil {
			return nil, err
		}
		return Number(-n), nil
	case "!", "not":
		t, err := runtime.Truth(v)
		if err != nil {
			return nil, err
		}
		return Bool(!t), nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", op)
}

func binary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+":
		// Numeric addition, or concatenation when the left side is a string.
		if s, ok := left.(Str); ok {
			return s + Str(right.Display()), nil
		}
		return numeric(op, left, right, func(a, b float64) float64 { return a + b })
	case "-":
		return numeric(op, left, right, func(a, b float64) float64 { return a - b })
	case "*":
		return numeric(op, left, right, func(a, b float64) float64 { return a * b })
	case "/":
		r, err := AsNumber(op, right)
		if err != nil {
			return nil, err
		}
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return numeric(op, left, right, func(a, b float64) float64 { return a / b })
	case "%":
		r, err := AsNumber(op, right)
		if err != nil {
			return nil, err
		}
		if r == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		return numeric(op, left, right, math.Mod)
	case "^", "**":
		return numeric(op, left, right, math.Pow)

	case "==":
		return Bool(left.Equals(right)), nil
	case "!=":
		return Bool(!left.Equals(right)), nil

	case "<":
		return compare(op, left, right, func(a, b float64) bool { return a < b })
	case "<=":
		return compare(op, left, right, func(a, b float64) bool { return a <= b })
	case ">":
		return compare(op, left, right, func(a, b float64) bool { return a > b })
	case ">=":
		return compare(op, left, right, func(a, b float64) bool { return a >= b })

	case "&&", "and":
		lt, err := runtime.Truth(left)
		if err != nil {
			return nil, err
		}
		rt, err := runtime.Truth(right)
		if err != nil {
			return nil, err
		}
		return Bool(lt && rt), nil
	case "||", "or":
		lt, err := runtime.Truth(left)
		if err != nil {
			return nil, err
		}
		rt, err := runtime.Truth(right)
		if err != nil {
			return nil, err
		}
		return Bool(lt || rt), nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

func numeric(op string, left, right runtime.Value, fn func(a, b float64) float64) (runtime.Value, error) {
	a, err := AsNumber(op, left)
	if err != nil {
		return nil, err
	}
	b, err := AsNumber(op, right)
	if err != nil {
		return nil, err
	}
	return Number(fn(a, b)), nil
}

func compare(op string, left, right runtime.Value, fn func(a, b float64) bool) (runtime.Value, error) {
	// Strings compare lexicographically, numbers numerically.
	if ls, ok := left.(Str); ok {
		rs, err := AsString(op, right)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return Bool(string(ls) < rs), nil
		case "<=":
			return Bool(string(ls) <= rs), nil
		case ">":
			return Bool(string(ls) > rs), nil
		case ">=":
			return Bool(string(ls) >= rs), nil
		}
	}
	a, err := AsNumber(op, left)
	if err != nil {
		return nil, err
	}
	b, err := AsNumber(op, right)
	if err != nil {
		return nil, err
	}
	return Bool(fn(a, b)), nil
}
