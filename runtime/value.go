// Package runtime holds the kernel's execution substrate: opaque values,
// control signals, the scoped environment, and the extern dispatcher.
//
// The kernel never inspects a Value's contents. It clones values, compares
// them through the Equals capability, renders them through Display/Debug,
// and performs type-directed operations only through capability interfaces
// that the language layer's concrete types choose to satisfy.
package runtime

// Value is an opaque capability object. Concrete numeric/string/boolean
// representations belong entirely to the language layer.
type Value interface {
	// Clone returns a value that may be bound independently of the
	// receiver. Immutable implementations may return themselves.
	Clone() Value

	// Display renders the value for program output.
	Display() string

	// Debug renders the value for diagnostics.
	Debug() string

	// Equals reports value equality as the language defines it.
	Equals(other Value) bool
}

// Truthy is the capability a Value must satisfy to drive a Branch condition
// or loop guard. Values without it produce a TypeError when used as one.
type Truthy interface {
	Truth() bool
}

// Truth downcasts v to its Truthy capability.
func Truth(v Value) (bool, error) {
	t, ok := v.(Truthy)
	if !ok {
		return false, &TypeError{Op: "condition", Want: "boolean-capable value", Got: v}
	}
	return t.Truth(), nil
}
