package slate

import (
	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/runtime"
)

// ---------------------------------------------------------------------------
// Executable nodes
// ---------------------------------------------------------------------------

// Expression nodes evaluate to a value; statement nodes execute for effect
// and produce a control signal. The kernel drives both through the Expr and
// Stmt interfaces without knowing these concrete types.

// NumberLit is a numeric literal.
type NumberLit struct {
	Sp  kernel.Span
	Val object.Number
}

func (n *NumberLit) Span() kernel.Span { return n.Sp }

func (n *NumberLit) Eval(env *runtime.Env) (runtime.Value, error) {
	return n.Val, nil
}

// StringLit is a string literal.
type StringLit struct {
	Sp  kernel.Span
	Val object.Str
}

func (s *StringLit) Span() kernel.Span { return s.Sp }

func (s *StringLit) Eval(env *runtime.Env) (runtime.Value, error) {
	return s.Val, nil
}

// ConstLit is a keyword-spelled constant: true, false, null.
type ConstLit struct {
	Sp  kernel.Span
	Val runtime.Value
}

func (c *ConstLit) Span() kernel.Span { return c.Sp }

func (c *ConstLit) Eval(env *runtime.Env) (runtime.Value, error) {
	return c.Val, nil
}

// Ident reads a variable.
type Ident struct {
	Sp   kernel.Span
	Name string
}

func (i *Ident) Span() kernel.Span { return i.Sp }

func (i *Ident) Eval(env *runtime.Env) (runtime.Value, error) {
	return env.Get(i.Name)
}

// Prefix applies a unary operator.
type Prefix struct {
	Sp      kernel.Span
	Op      string
	Operand kernel.Expr
}

func (p *Prefix) Span() kernel.Span { return p.Sp }

func (p *Prefix) Eval(env *runtime.Env) (runtime.Value, error) {
	v, err := p.Operand.Eval(env)
	if err != nil {
		return nil, err
	}
	return object.Operate(p.Op, []runtime.Value{v})
}

// Binary applies a binary operator.
type Binary struct {
	Sp    kernel.Span
	Op    string
	Left  kernel.Expr
	Right kernel.Expr
}

func (b *Binary) Span() kernel.Span { return b.Sp }

func (b *Binary) Eval(env *runtime.Env) (runtime.Value, error) {
	l, err := b.Left.Eval(env)
	if err != nil {
		return nil, err
	}
	// && and || test the left side first; the right side runs only when
	// the left does not already decide the result.
	if b.Op == "&&" || b.Op == "||" {
		lt, err := runtime.Truth(l)
		if err != nil {
			return nil, err
		}
		if b.Op == "&&" && !lt {
			return object.Bool(false), nil
		}
		if b.Op == "||" && lt {
			return object.Bool(true), nil
		}
		r, err := b.Right.Eval(env)
		if err != nil {
			return nil, err
		}
		rt, err := runtime.Truth(r)
		if err != nil {
			return nil, err
		}
		return object.Bool(rt), nil
	}
	r, err := b.Right.Eval(env)
	if err != nil {
		return nil, err
	}
	return object.Operate(b.Op, []runtime.Value{l, r})
}

// Call invokes a function value bound to a name.
type Call struct {
	Sp   kernel.Span
	Name string
	Args []kernel.Expr
}

func (c *Call) Span() kernel.Span { return c.Sp }

func (c *Call) Eval(env *runtime.Env) (runtime.Value, error) {
	callee, err := env.Get(c.Name)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*FuncValue)
	if !ok {
		return nil, &runtime.TypeError{Op: "call " + c.Name, Want: "function", Got: callee}
	}
	args, err := evalArgs(c.Args, env)
	if err != nil {
		return nil, err
	}
	return fn.Call(args, env)
}

// Extern invokes a host capability through the dispatcher. The selector is
// always a quoted string literal at the syntax level, never an identifier.
type Extern struct {
	Sp       kernel.Span
	Selector string
	Args     []kernel.Expr
}

func (e *Extern) Span() kernel.Span { return e.Sp }

func (e *Extern) Eval(env *runtime.Env) (runtime.Value, error) {
	args, err := evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return env.Dispatcher().Invoke(e.Selector, args)
}

func evalArgs(exprs []kernel.Expr, env *runtime.Env) ([]runtime.Value, error) {
	args := make([]runtime.Value, len(exprs))
	for i, ex := range exprs {
		v, err := ex.Eval(env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Block executes its statements in a fresh scope frame. The frame is
// released on every exit path, signals included.
type Block struct {
	Sp    kernel.Span
	Stmts []kernel.Stmt
}

func (b *Block) Span() kernel.Span { return b.Sp }

func (b *Block) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	defer env.PushScope()()
	var last runtime.Value
	for _, stmt := range b.Stmts {
		v, sig, err := stmt.Exec(env)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		last = v
		if !sig.IsNone() {
			return last, sig, nil
		}
	}
	return last, runtime.NoSignal, nil
}

// Let creates a binding in the current frame, shadowing any outer binding
// of the same name (the block-local model).
type Let struct {
	Sp   kernel.Span
	Name string
	Expr kernel.Expr
}

func (l *Let) Span() kernel.Span { return l.Sp }

func (l *Let) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	v, err := l.Expr.Eval(env)
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	env.Bind(l.Name, v)
	return v, runtime.NoSignal, nil
}

// Assign mutates an existing binding found by scope search, creating it in
// the current frame only when no frame binds the name (the flat model).
type Assign struct {
	Sp   kernel.Span
	Name string
	Expr kernel.Expr
}

func (a *Assign) Span() kernel.Span { return a.Sp }

func (a *Assign) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	v, err := a.Expr.Eval(env)
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	env.Set(a.Name, v)
	return v, runtime.NoSignal, nil
}

// ExprStmt evaluates an expression for its value and side effects.
type ExprStmt struct {
	Expr kernel.Expr
}

func (e *ExprStmt) Span() kernel.Span { return e.Expr.Span() }

func (e *ExprStmt) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	v, err := e.Expr.Eval(env)
	return v, runtime.NoSignal, err
}

// While repeats its body while the condition holds; it is the consumption
// point for Break and Continue.
type While struct {
	Sp   kernel.Span
	Cond kernel.Expr
	Body *Block
}

func (w *While) Span() kernel.Span { return w.Sp }

func (w *While) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	var last runtime.Value
	for {
		c, err := w.Cond.Eval(env)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		truth, err := runtime.Truth(c)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !truth {
			return last, runtime.NoSignal, nil
		}
		v, sig, err := w.Body.Exec(env)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		switch sig.Kind {
		case runtime.SignalNone, runtime.SignalContinue:
			last = v
		case runtime.SignalBreak:
			return v, runtime.NoSignal, nil
		case runtime.SignalReturn:
			return v, sig, nil
		}
	}
}

// If executes exactly one of its branches. Else may be nil, a Block, or a
// further If for else-if chains.
type If struct {
	Sp   kernel.Span
	Cond kernel.Expr
	Then *Block
	Else kernel.Stmt
}

func (i *If) Span() kernel.Span { return i.Sp }

func (i *If) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	c, err := i.Cond.Eval(env)
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	truth, err := runtime.Truth(c)
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	if truth {
		return i.Then.Exec(env)
	}
	if i.Else != nil {
		return i.Else.Exec(env)
	}
	return nil, runtime.NoSignal, nil
}

// Return produces a Return signal; the value defaults to null.
type Return struct {
	Sp   kernel.Span
	Expr kernel.Expr // may be nil
}

func (r *Return) Span() kernel.Span { return r.Sp }

func (r *Return) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	var v runtime.Value = object.Null{}
	if r.Expr != nil {
		ev, err := r.Expr.Eval(env)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		v = ev
	}
	return v, runtime.Return(v), nil
}

// Break produces a Break signal.
type Break struct {
	Sp kernel.Span
}

func (b *Break) Span() kernel.Span { return b.Sp }

func (b *Break) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	return nil, runtime.Signal{Kind: runtime.SignalBreak}, nil
}

// Continue produces a Continue signal.
type Continue struct {
	Sp kernel.Span
}

func (c *Continue) Span() kernel.Span { return c.Sp }

func (c *Continue) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	return nil, runtime.Signal{Kind: runtime.SignalContinue}, nil
}

// FnDef binds a function value to its name in the current frame.
type FnDef struct {
	Sp kernel.Span
	Fn *FuncValue
}

func (f *FnDef) Span() kernel.Span { return f.Sp }

func (f *FnDef) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	env.Bind(f.Fn.Name, f.Fn)
	return f.Fn, runtime.NoSignal, nil
}

// Print desugars to the console capability through the dispatcher.
type Print struct {
	Sp   kernel.Span
	Args []kernel.Expr
}

func (p *Print) Span() kernel.Span { return p.Sp }

func (p *Print) Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error) {
	args, err := evalArgs(p.Args, env)
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	v, err := env.Dispatcher().Invoke("console:println", args)
	return v, runtime.NoSignal, err
}
