// Package object provides the concrete value types shared by the bundled
// front-end languages, plus their operator semantics. The kernel never sees
// these types directly; it works through the runtime.Value capability set.
package object

import (
	"strconv"

	"github.com/substrate-lang/substrate/runtime"
)

// ---------------------------------------------------------------------------
// Concrete values: number, string, boolean, null
// ---------------------------------------------------------------------------

// Number is a float64-backed numeric value.
type Number float64

func (n Number) Clone() runtime.Value { return n }

func (n Number) Display() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (n Number) Debug() string { return n.Display() }

func (n Number) Equals(other runtime.Value) bool {
	o, ok := other.(Number)
	return ok && n == o
}

func (n Number) Truth() bool { return n != 0 }

// Str is a string value.
type Str string

func (s Str) Clone() runtime.Value { return s }

func (s Str) Display() string { return string(s) }

func (s Str) Debug() string { return strconv.Quote(string(s)) }

func (s Str) Equals(other runtime.Value) bool {
	o, ok := other.(Str)
	return ok && s == o
}

func (s Str) Truth() bool { return len(s) > 0 }

// Bool is a boolean value.
type Bool bool

func (b Bool) Clone() runtime.Value { return b }

func (b Bool) Display() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) Debug() string { return b.Display() }

func (b Bool) Equals(other runtime.Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

func (b Bool) Truth() bool { return bool(b) }

// Null is the absent value.
type Null struct{}

func (Null) Clone() runtime.Value { return Null{} }

func (Null) Display() string { return "null" }

func (Null) Debug() string { return "null" }

func (Null) Equals(other runtime.Value) bool {
	_, ok := other.(Null)
	return ok
}

func (Null) Truth() bool { return false }

// ---------------------------------------------------------------------------
// Downcast helpers
// ---------------------------------------------------------------------------

// AsNumber downcasts v to a float64, reporting a type error for op when the
// value has no numeric capability.
func AsNumber(op string, v runtime.Value) (float64, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, &runtime.TypeError{Op: op, Want: "number", Got: v}
	}
	return float64(n), nil
}

// AsString downcasts v to a string.
func AsString(op string, v runtime.Value) (string, error) {
	s, ok := v.(Str)
	if !ok {
		return "", &runtime.TypeError{Op: op, Want: "string", Got: v}
	}
	return string(s), nil
}
