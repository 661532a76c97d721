package instr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/runtime"
)

// runFixture compiles and executes src, capturing console output.
func runFixture(t *testing.T, src string) (runtime.Value, string) {
	t.Helper()
	v, out, err := tryRunFixture(t, src)
	if err != nil {
		t.Fatalf("run:\n%s\n%v", src, err)
	}
	return v, out
}

func tryRunFixture(t *testing.T, src string) (runtime.Value, string, error) {
	t.Helper()
	c, err := NewCompiler(testLang())
	if err != nil {
		t.Fatal(err)
	}
	prog, err := c.Compile(src)
	if err != nil {
		t.Fatalf("compile:\n%s\n%v", src, err)
	}

	var buf bytes.Buffer
	d := runtime.NewDispatcher()
	println := runtime.CapabilityFunc{CapName: "println", Fn: func(args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Display()
		}
		fmt.Fprintln(&buf, strings.Join(parts, " "))
		return object.Null{}, nil
	}}
	if err := d.Register("console", println); err != nil {
		t.Fatal(err)
	}

	env := runtime.NewEnv(d)
	v, err := NewExecutor(object.Hooks{}).Run(prog, env)
	return v, buf.String(), err
}

func TestExecWhileLoop(t *testing.T) {
	src := "i = 0\n" +
		"while i < 3:\n" +
		"    print i\n" +
		"    i = i + 1\n"
	_, out := runFixture(t, src)

	if out != "0\n1\n2\n" {
		t.Errorf("output = %q, want %q", out, "0\n1\n2\n")
	}
}

func TestExecBreakAndContinue(t *testing.T) {
	src := "i = 0\n" +
		"while true:\n" +
		"    i = i + 1\n" +
		"    if i == 2:\n" +
		"        continue\n" +
		"    if i == 4:\n" +
		"        break\n" +
		"    print i\n"
	_, out := runFixture(t, src)

	if out != "1\n3\n" {
		t.Errorf("output = %q, want %q", out, "1\n3\n")
	}
}

func TestExecLogicShortCircuits(t *testing.T) {
	// A guard on the left must keep the right side from running at all;
	// evaluating it eagerly here would divide by zero.
	src := "x = 0\n" +
		"if x != 0 and 1 / x > 1:\n" +
		"    print 1\n" +
		"if x == 0 or 1 / x > 1:\n" +
		"    print 2\n"
	_, out := runFixture(t, src)

	if out != "2\n" {
		t.Errorf("output = %q, want %q", out, "2\n")
	}
}

func TestExecLogicYieldsBool(t *testing.T) {
	// Logic operators produce booleans even over non-boolean operands.
	tests := []struct {
		src  string
		want bool
	}{
		{"return 1 and 2\n", true},
		{"return 0 and 1\n", false},
		{"return 0 or 2\n", true},
		{"return 0 or 0\n", false},
	}
	for _, tt := range tests {
		v, _ := runFixture(t, tt.src)
		if !v.Equals(object.Bool(tt.want)) {
			t.Errorf("run(%q) = %v, want %v", tt.src, v, tt.want)
		}
	}
}

func TestExecFunctionCall(t *testing.T) {
	src := "def add(a, b):\n" +
		"    return a + b\n" +
		"print add(add(1, 2), 3)\n"
	_, out := runFixture(t, src)

	if out != "6\n" {
		t.Errorf("output = %q, want %q", out, "6\n")
	}
}

func TestExecRecursion(t *testing.T) {
	src := "def fact(n):\n" +
		"    if n < 2:\n" +
		"        return 1\n" +
		"    return n * fact(n - 1)\n" +
		"print fact(6)\n"
	_, out := runFixture(t, src)

	if out != "720\n" {
		t.Errorf("output = %q, want %q", out, "720\n")
	}
}

func TestExecReturnCrossesLoop(t *testing.T) {
	src := "def find(limit):\n" +
		"    i = 0\n" +
		"    while true:\n" +
		"        if i == limit:\n" +
		"            return i\n" +
		"        i = i + 1\n" +
		"print find(5)\n"
	_, out := runFixture(t, src)

	if out != "5\n" {
		t.Errorf("output = %q, want %q", out, "5\n")
	}
}

func TestExecTopLevelReturn(t *testing.T) {
	src := "x = 1\nreturn 42\nx = 2\n"
	v, _ := runFixture(t, src)

	if !v.Equals(object.Number(42)) {
		t.Errorf("result = %v, want 42", v)
	}
}

func TestExecTopLevelBreak(t *testing.T) {
	_, _, err := tryRunFixture(t, "break\n")

	var scopeErr *runtime.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("error = %v, want ScopeError", err)
	}
}

func TestExecBreakInsideFunctionBody(t *testing.T) {
	// The call boundary must stop break even when a loop encloses the call.
	src := "def bad():\n" +
		"    break\n" +
		"i = 0\n" +
		"while i < 3:\n" +
		"    bad()\n" +
		"    i = i + 1\n"
	_, _, err := tryRunFixture(t, src)

	var scopeErr *runtime.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("error = %v, want ScopeError", err)
	}
}

func TestExecArityMismatch(t *testing.T) {
	src := "def f(a):\n    return a\nf(1, 2)\n"
	_, _, err := tryRunFixture(t, src)
	if err == nil {
		t.Fatal("arity mismatch should error")
	}
}

func TestExecScopingIsFlat(t *testing.T) {
	// Assignment inside a block mutates the outer binding.
	src := "x = 1\n" +
		"if true:\n" +
		"    x = 2\n" +
		"print x\n"
	_, out := runFixture(t, src)

	if out != "2\n" {
		t.Errorf("output = %q, want %q", out, "2\n")
	}
}

func TestExecBlockLocalsDie(t *testing.T) {
	src := "if true:\n" +
		"    tmp = 1\n" +
		"print tmp\n"
	_, _, err := tryRunFixture(t, src)

	var scopeErr *runtime.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("error = %v, want ScopeError", err)
	}
}

func TestExecDepthRestoredAfterError(t *testing.T) {
	src := "def loop_forever(n):\n" +
		"    return loop_forever(n + 1)\n" +
		"loop_forever(0)\n"
	c, err := NewCompiler(testLang())
	if err != nil {
		t.Fatal(err)
	}
	prog, err := c.Compile(src)
	if err != nil {
		t.Fatal(err)
	}

	env := runtime.NewEnv(nil)
	env.SetMaxCallDepth(64)
	depth := env.Depth()

	_, err = NewExecutor(object.Hooks{}).Run(prog, env)
	var scopeErr *runtime.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("error = %v, want ScopeError", err)
	}
	if env.Depth() != depth {
		t.Errorf("Depth = %d, want %d after unwinding", env.Depth(), depth)
	}
}

func TestExecDepthStableAcrossCalls(t *testing.T) {
	src := "def early(n):\n" +
		"    while true:\n" +
		"        return n\n" +
		"early(1)\n" +
		"early(2)\n"
	c, err := NewCompiler(testLang())
	if err != nil {
		t.Fatal(err)
	}
	prog, err := c.Compile(src)
	if err != nil {
		t.Fatal(err)
	}

	env := runtime.NewEnv(nil)
	depth := env.Depth()
	if _, err := NewExecutor(object.Hooks{}).Run(prog, env); err != nil {
		t.Fatal(err)
	}
	if env.Depth() != depth {
		t.Errorf("Depth = %d, want %d", env.Depth(), depth)
	}
}

func TestExecUnknownSelector(t *testing.T) {
	_, _, err := tryRunFixture(t, `extern "ghost:run"()`+"\n")

	var resErr *runtime.ResolveError
	if !errors.As(err, &resErr) {
		t.Fatalf("error = %v, want ResolveError", err)
	}
	if !strings.Contains(resErr.Error(), "ghost") {
		t.Errorf("error %q should name the missing backend", resErr.Error())
	}
}

func TestExecPassDoesNothing(t *testing.T) {
	src := "if true:\n    pass\nprint 1\n"
	_, out := runFixture(t, src)

	if out != "1\n" {
		t.Errorf("output = %q, want %q", out, "1\n")
	}
}
