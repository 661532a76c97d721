package instr

import (
	"fmt"

	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/runtime"
)

// ---------------------------------------------------------------------------
// Executor: single dispatch over the canonical instruction tags
// ---------------------------------------------------------------------------

// Hooks supplies the language-specific semantics the canonical executor is
// deliberately ignorant of: how literal tokens become values and what
// operators mean. Everything else (sequencing, scoping, branching,
// assignment, invocation, transfers) is kernel mechanics.
type Hooks interface {
	// Literal materializes a literal token into a value.
	Literal(role kernel.Role, lexeme string) (runtime.Value, error)

	// Operate applies an operator to evaluated operands. Unary and binary
	// uses of one lexeme are distinguished by operand count.
	Operate(op string, operands []runtime.Value) (runtime.Value, error)
}

// Executor runs compiled programs. One Executor serves many programs and
// many environments; it holds no per-run state.
type Executor struct {
	hooks Hooks
}

// NewExecutor creates an executor over the given language hooks.
func NewExecutor(hooks Hooks) *Executor {
	return &Executor{hooks: hooks}
}

// Run executes a compiled program against env. A top-level Return stops the
// program and yields its value; a top-level Break or Continue is a scope
// error. The environment depth is unchanged on every exit path.
func (x *Executor) Run(prog *Program, env *runtime.Env) (runtime.Value, error) {
	st := &state{hooks: x.hooks, funcs: prog.Funcs, env: env}
	v, sig, err := st.exec(prog.Body)
	if err != nil {
		return nil, err
	}
	switch sig.Kind {
	case runtime.SignalReturn:
		return sig.Value, nil
	case runtime.SignalBreak:
		return nil, &runtime.ScopeError{Msg: "break outside loop"}
	case runtime.SignalContinue:
		return nil, &runtime.ScopeError{Msg: "continue outside loop"}
	}
	return v, nil
}

// state is the per-run execution context.
type state struct {
	hooks Hooks
	funcs map[string]*Function
	env   *runtime.Env
}

// exec is the one decision point of this strategy: a single match over the
// instruction tags, not one dispatch site per language construct.
func (s *state) exec(in *Instruction) (runtime.Value, runtime.Signal, error) {
	switch in.Kind {
	case KindConst:
		v, err := s.hooks.Literal(in.Role, in.Lexeme)
		return v, runtime.NoSignal, err

	case KindLoad:
		v, err := s.env.Get(in.Lexeme)
		return v, runtime.NoSignal, err

	case KindSequence:
		var last runtime.Value
		for _, kid := range in.Kids {
			v, sig, err := s.exec(kid)
			if err != nil {
				return nil, runtime.NoSignal, err
			}
			last = v
			if !sig.IsNone() {
				return last, sig, nil
			}
		}
		return last, runtime.NoSignal, nil

	case KindScope:
		return s.execScoped(in.Kids[0])

	case KindBranch:
		cond, sig, err := s.exec(in.Kids[0])
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !sig.IsNone() {
			return cond, sig, nil
		}
		truth, err := runtime.Truth(cond)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if truth {
			return s.exec(in.Kids[1])
		}
		if len(in.Kids) > 2 {
			return s.exec(in.Kids[2])
		}
		return nil, runtime.NoSignal, nil

	case KindLoop:
		return s.execLoop(in)

	case KindAssign:
		v, sig, err := s.exec(in.Kids[0])
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !sig.IsNone() {
			return v, sig, nil
		}
		s.env.Set(in.Lexeme, v)
		return v, runtime.NoSignal, nil

	case KindInvoke:
		return s.execInvoke(in)

	case KindOperate:
		if len(in.Kids) == 2 && logical(in.Lexeme) {
			return s.execLogical(in)
		}
		operands := make([]runtime.Value, 0, len(in.Kids))
		for _, kid := range in.Kids {
			v, sig, err := s.exec(kid)
			if err != nil {
				return nil, runtime.NoSignal, err
			}
			if !sig.IsNone() {
				return v, sig, nil
			}
			operands = append(operands, v)
		}
		v, err := s.hooks.Operate(in.Lexeme, operands)
		return v, runtime.NoSignal, err

	case KindTransfer:
		var val runtime.Value
		if len(in.Kids) > 0 {
			v, sig, err := s.exec(in.Kids[0])
			if err != nil {
				return nil, runtime.NoSignal, err
			}
			if !sig.IsNone() {
				return v, sig, nil
			}
			val = v
		}
		switch in.Transfer {
		case TransferReturn:
			return nil, runtime.Return(val), nil
		case TransferBreak:
			return nil, runtime.Signal{Kind: runtime.SignalBreak}, nil
		case TransferContinue:
			return nil, runtime.Signal{Kind: runtime.SignalContinue}, nil
		}
	}
	return nil, runtime.NoSignal, fmt.Errorf("instr: unknown instruction %s", in.Kind)
}

// logical reports whether op is a short-circuit logical operator spelling.
func logical(op string) bool {
	switch op {
	case "&&", "and", "||", "or":
		return true
	}
	return false
}

// execLogical evaluates a logical operator with the right side guarded by
// the left: when the left operand decides the result, the right instruction
// never runs. And/or are idempotent over truth, so a decided left side
// stands in for both operands and the hook still yields the language's
// boolean.
func (s *state) execLogical(in *Instruction) (runtime.Value, runtime.Signal, error) {
	left, sig, err := s.exec(in.Kids[0])
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	if !sig.IsNone() {
		return left, sig, nil
	}
	truth, err := runtime.Truth(left)
	if err != nil {
		return nil, runtime.NoSignal, err
	}
	conjunction := in.Lexeme == "&&" || in.Lexeme == "and"
	operands := []runtime.Value{left, left}
	if truth == conjunction {
		right, sig, err := s.exec(in.Kids[1])
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !sig.IsNone() {
			return right, sig, nil
		}
		operands[1] = right
	}
	v, err := s.hooks.Operate(in.Lexeme, operands)
	return v, runtime.NoSignal, err
}

// execScoped runs body in a fresh frame, released on every exit path.
func (s *state) execScoped(body *Instruction) (runtime.Value, runtime.Signal, error) {
	defer s.env.PushScope()()
	return s.exec(body)
}

// execLoop repeats the body while the condition holds. The loop is the
// consumption point for Break and Continue; Return passes through.
func (s *state) execLoop(in *Instruction) (runtime.Value, runtime.Signal, error) {
	cond, body := in.Kids[0], in.Kids[1]
	var last runtime.Value
	for {
		c, sig, err := s.exec(cond)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !sig.IsNone() {
			return c, sig, nil
		}
		truth, err := runtime.Truth(c)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !truth {
			return last, runtime.NoSignal, nil
		}

		v, sig, err := s.exec(body)
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

// execInvoke evaluates arguments, then calls either a program-defined
// function (bare selectors only) or an extern capability.
func (s *state) execInvoke(in *Instruction) (runtime.Value, runtime.Signal, error) {
	args := make([]runtime.Value, 0, len(in.Kids))
	for _, kid := range in.Kids {
		v, sig, err := s.exec(kid)
		if err != nil {
			return nil, runtime.NoSignal, err
		}
		if !sig.IsNone() {
			return v, sig, nil
		}
		args = append(args, v)
	}

	if fn, ok := s.funcs[in.Lexeme]; ok {
		v, err := s.call(fn, args)
		return v, runtime.NoSignal, err
	}

	v, err := s.env.Dispatcher().Invoke(in.Lexeme, args)
	return v, runtime.NoSignal, err
}

// call runs a user function body in its own frame. The call is the
// consumption point for Return; Break and Continue must not cross it.
func (s *state) call(fn *Function, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("function %q expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	release, err := s.env.EnterCall()
	if err != nil {
		return nil, err
	}
	defer release()
	defer s.env.PushScope()()

	for i, p := range fn.Params {
		s.env.Bind(p, args[i].Clone())
	}

	v, sig, err := s.exec(fn.Body)
	if err != nil {
		return nil, err
	}
	switch sig.Kind {
	case runtime.SignalReturn:
		return sig.Value, nil
	case runtime.SignalBreak:
		return nil, &runtime.ScopeError{Msg: "break outside loop"}
	case runtime.SignalContinue:
		return nil, &runtime.ScopeError{Msg: "continue outside loop"}
	}
	return v, nil
}
