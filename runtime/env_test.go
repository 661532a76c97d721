package runtime

import (
	"errors"
	"testing"
)

// testVal is a minimal Value for environment tests.
type testVal string

func (v testVal) Clone() Value           { return v }
func (v testVal) Display() string        { return string(v) }
func (v testVal) Debug() string          { return string(v) }
func (v testVal) Equals(other Value) bool {
	o, ok := other.(testVal)
	return ok && o == v
}

func TestGetUndefined(t *testing.T) {
	env := NewEnv(nil)
	_, err := env.Get("ghost")

	var scopeErr *ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("error = %v, want ScopeError", err)
	}
}

func TestSetFlatScoping(t *testing.T) {
	env := NewEnv(nil)
	env.Set("x", testVal("outer"))

	leave := env.PushScope()
	env.Set("x", testVal("mutated"))
	leave()

	// Flat assignment reaches through frames and mutates the outer binding.
	v, err := env.Get("x")
	if err != nil {
		t.Fatal(err)
	}
	if v != testVal("mutated") {
		t.Errorf("x = %v, want mutated", v)
	}
}

func TestBindShadows(t *testing.T) {
	env := NewEnv(nil)
	env.Bind("x", testVal("outer"))

	leave := env.PushScope()
	env.Bind("x", testVal("inner"))
	v, _ := env.Get("x")
	if v != testVal("inner") {
		t.Errorf("inner x = %v, want inner", v)
	}
	leave()

	v, err := env.Get("x")
	if err != nil {
		t.Fatal(err)
	}
	if v != testVal("outer") {
		t.Errorf("after leave x = %v, want outer", v)
	}
}

func TestSetCreatesInCurrentFrame(t *testing.T) {
	env := NewEnv(nil)

	leave := env.PushScope()
	env.Set("fresh", testVal("v"))
	leave()

	// A binding created inside the block dies with its frame.
	if env.Has("fresh") {
		t.Error("binding created in inner frame should not survive")
	}
}

func TestPushScopeRestoreIdempotent(t *testing.T) {
	env := NewEnv(nil)
	depth := env.Depth()

	leave := env.PushScope()
	leave()
	leave()
	leave()

	if env.Depth() != depth {
		t.Errorf("Depth = %d, want %d", env.Depth(), depth)
	}
}

func TestPushScopeTruncatesLeakedFrames(t *testing.T) {
	env := NewEnv(nil)
	depth := env.Depth()

	leave := env.PushScope()
	env.PushScope() // leaked on purpose: its restore is never called
	env.PushScope()
	leave()

	if env.Depth() != depth {
		t.Errorf("Depth = %d, want %d after truncation", env.Depth(), depth)
	}
}

func TestEnterCallCeiling(t *testing.T) {
	env := NewEnv(nil)
	env.SetMaxCallDepth(3)

	var release []func()
	for i := 0; i < 3; i++ {
		done, err := env.EnterCall()
		if err != nil {
			t.Fatalf("EnterCall %d: %v", i, err)
		}
		release = append(release, done)
	}

	_, err := env.EnterCall()
	var scopeErr *ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("over-limit error = %v, want ScopeError", err)
	}

	// Releasing makes room again: the failure is recoverable.
	release[2]()
	done, err := env.EnterCall()
	if err != nil {
		t.Fatalf("EnterCall after release: %v", err)
	}
	done()
	for _, r := range release[:2] {
		r()
	}
}

func TestDepthStableAcrossOperations(t *testing.T) {
	env := NewEnv(nil)
	depth := env.Depth()

	for i := 0; i < 5; i++ {
		func() {
			defer env.PushScope()()
			env.Bind("tmp", testVal("x"))
		}()
		if env.Depth() != depth {
			t.Fatalf("iteration %d: Depth = %d, want %d", i, env.Depth(), depth)
		}
	}
}
