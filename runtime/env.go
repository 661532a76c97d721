package runtime

// ---------------------------------------------------------------------------
// Env: lexical scope-frame stack
// ---------------------------------------------------------------------------

// DefaultMaxCallDepth bounds language-level recursion. Host stack exhaustion
// is not recoverable in Go, so the evaluators enforce this ceiling and
// surface it as an ordinary ScopeError instead.
const DefaultMaxCallDepth = 10_000

type frame map[string]Value

// Env is an ordered stack of scope frames mapping names to values. Each
// program execution owns a private Env; nothing is shared between runs.
//
// Every frame pushed on entry to a block or function must be popped exactly
// once on every exit path. PushScope therefore returns the matching pop as a
// function for the caller to defer, so early returns, propagated signals and
// errors all release the frame:
//
//	defer env.PushScope()()
//
// There is no exported pop to misplace.
type Env struct {
	frames    []frame
	dispatch  *Dispatcher
	callDepth int
	maxDepth  int
}

// NewEnv creates an environment with a single global frame and the given
// extern dispatcher (nil for a dispatcher with no backends).
func NewEnv(d *Dispatcher) *Env {
	if d == nil {
		d = NewDispatcher()
	}
	return &Env{
		frames:   []frame{make(frame)},
		dispatch: d,
		maxDepth: DefaultMaxCallDepth,
	}
}

// SetMaxCallDepth overrides the recursion ceiling. Values below 1 are ignored.
func (e *Env) SetMaxCallDepth(n int) {
	if n >= 1 {
		e.maxDepth = n
	}
}

// Dispatcher returns the extern dispatcher for this execution.
func (e *Env) Dispatcher() *Dispatcher {
	return e.dispatch
}

// Depth returns the number of live scope frames. The scope non-leak
// invariant: Depth is identical before and after any completed operation.
func (e *Env) Depth() int {
	return len(e.frames)
}

// PushScope enters a fresh innermost frame and returns the function that
// leaves it. The returned function is idempotent, so a deferred call is safe
// even if the caller also popped explicitly on some path.
func (e *Env) PushScope() func() {
	e.frames = append(e.frames, make(frame))
	want := len(e.frames)
	done := false
	return func() {
		if done {
			return
		}
		done = true
		if len(e.frames) != want {
			// A nested frame was leaked; truncating here contains the
			// damage to the current operation instead of corrupting
			// subsequent invocations.
			e.frames = e.frames[:want]
		}
		e.frames = e.frames[:want-1]
	}
}

// EnterCall accounts one level of language-level call depth and returns the
// function that releases it. Exceeding the ceiling is a recoverable error.
func (e *Env) EnterCall() (func(), error) {
	if e.callDepth >= e.maxDepth {
		return nil, scopeErrorf("call depth exceeded (%d)", e.maxDepth)
	}
	e.callDepth++
	done := false
	return func() {
		if done {
			return
		}
		done = true
		e.callDepth--
	}, nil
}

// Get looks a name up from the innermost frame outward.
func (e *Env) Get(name string) (Value, error) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i][name]; ok {
			return v, nil
		}
	}
	return nil, scopeErrorf("undefined variable %q", name)
}

// Has reports whether a name is bound in any frame.
func (e *Env) Has(name string) bool {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			return true
		}
	}
	return false
}

// Set implements the flat scoping model: it mutates an existing binding
// found by walking frames from innermost to outermost, and only creates the
// name in the current frame when no frame binds it.
func (e *Env) Set(name string, v Value) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			e.frames[i][name] = v
			return
		}
	}
	e.frames[len(e.frames)-1][name] = v
}

// Bind implements the block-local scoping model: it always creates the name
// in the current frame, shadowing any outer binding of the same name.
func (e *Env) Bind(name string, v Value) {
	e.frames[len(e.frames)-1][name] = v
}
