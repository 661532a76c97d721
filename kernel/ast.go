package kernel

import (
	"github.com/substrate-lang/substrate/runtime"
)

// ---------------------------------------------------------------------------
// Executable nodes for the tree-walking variant
// ---------------------------------------------------------------------------

// Expr is an executable node that evaluates to a value. Concrete node types
// are supplied entirely by the language layer; the kernel only knows the
// operation exists.
type Expr interface {
	Span() Span
	Eval(env *runtime.Env) (runtime.Value, error)
}

// Stmt is an executable node run for effect. It produces a value (the
// statement's result, for expression statements) and a control signal.
type Stmt interface {
	Span() Span
	Exec(env *runtime.Env) (runtime.Value, runtime.Signal, error)
}

// Program is one parsed program: an ordered statement list.
type Program struct {
	Stmts []Stmt
}

// Run executes the program's statements in order against env. A Return
// signal at top level stops execution and yields its value; Break or
// Continue at top level is a scope error, since no loop encloses them.
func (p *Program) Run(env *runtime.Env) (runtime.Value, error) {
	var last runtime.Value
	for _, stmt := range p.Stmts {
		v, sig, err := stmt.Exec(env)
		if err != nil {
			return nil, err
		}
		last = v
		switch sig.Kind {
		case runtime.SignalNone:
		case runtime.SignalReturn:
			return sig.Value, nil
		case runtime.SignalBreak:
			return nil, &runtime.ScopeError{Msg: "break outside loop"}
		case runtime.SignalContinue:
			return nil, &runtime.ScopeError{Msg: "continue outside loop"}
		}
	}
	return last, nil
}
