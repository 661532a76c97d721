package slate

import (
	"strings"

	"github.com/substrate-lang/substrate/runtime"
)

// ---------------------------------------------------------------------------
// Function values
// ---------------------------------------------------------------------------

// FuncValue is a first-class function. Functions marked memoizable cache
// results keyed by their argument values; recursive calls hit the cache.
type FuncValue struct {
	Name    string
	Params  []string
	Body    *Block
	Memoize bool

	cache map[string]runtime.Value
}

func (f *FuncValue) Clone() runtime.Value { return f }

func (f *FuncValue) Display() string { return "<fn " + f.Name + ">" }

func (f *FuncValue) Debug() string { return f.Display() }

func (f *FuncValue) Equals(other runtime.Value) bool { return f == other }

// Call binds arguments into a fresh frame and executes the body. The call
// boundary consumes Return; Break or Continue escaping the body is a scope
// error, never a signal leaked to the caller. The frame and the call-depth
// slot are released on every exit path.
func (f *FuncValue) Call(args []runtime.Value, env *runtime.Env) (runtime.Value, error) {
	if len(args) != len(f.Params) {
		return nil, &runtime.ScopeError{
			Msg: "function " + f.Name + " arity mismatch",
		}
	}

	var key string
	if f.Memoize {
		key = memoKey(args)
		if cached, ok := f.cache[key]; ok {
			return cached, nil
		}
	}

	release, err := env.EnterCall()
	if err != nil {
		return nil, err
	}
	defer release()
	defer env.PushScope()()

	for i, p := range f.Params {
		env.Bind(p, args[i].Clone())
	}

	v, sig, err := f.Body.Exec(env)
	if err != nil {
		return nil, err
	}

	var result runtime.Value
	switch sig.Kind {
	case runtime.SignalReturn:
		result = sig.Value
	case runtime.SignalBreak:
		return nil, &runtime.ScopeError{Msg: "break outside loop"}
	case runtime.SignalContinue:
		return nil, &runtime.ScopeError{Msg: "continue outside loop"}
	default:
		result = v
	}

	if f.Memoize {
		if f.cache == nil {
			f.cache = make(map[string]runtime.Value)
		}
		f.cache[key] = result
	}
	return result, nil
}

// memoKey builds a stable cache key from argument debug renderings.
func memoKey(args []runtime.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Debug()
	}
	return strings.Join(parts, "|")
}
