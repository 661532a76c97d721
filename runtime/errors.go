package runtime

import "fmt"

// ---------------------------------------------------------------------------
// Runtime error taxonomy
// ---------------------------------------------------------------------------

// TypeError reports a failed capability downcast: an operation expected a
// value with a capability the concrete type does not provide. Recoverable by
// the caller as an ordinary error value.
type TypeError struct {
	Op   string
	Want string
	Got  Value
}

func (e *TypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.Debug()
	}
	return fmt.Sprintf("type error in %s: want %s, got %s", e.Op, e.Want, got)
}

// ScopeError reports a scoping violation: an undefined-variable lookup, a
// break/continue observed outside any enclosing loop, or an exceeded call
// depth.
type ScopeError struct {
	Msg string
}

func (e *ScopeError) Error() string {
	return "scope error: " + e.Msg
}

func scopeErrorf(format string, args ...any) *ScopeError {
	return &ScopeError{Msg: fmt.Sprintf(format, args...)}
}

// ResolveError reports an extern selector that named a backend or capability
// with no registered implementation. The selector is surfaced verbatim; a
// different backend is never silently substituted.
type ResolveError struct {
	Selector string
	Msg      string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %s", e.Selector, e.Msg)
}
