package extern

import (
	"fmt"
	"math"

	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/runtime"
)

// RegisterMath adds the math capabilities to the dispatcher under the
// "math" backend.
func RegisterMath(d *runtime.Dispatcher) error {
	caps := []runtime.Capability{
		unaryMath("abs", math.Abs),
		unaryMath("floor", math.Floor),
		unaryMath("ceil", math.Ceil),
		unaryMath("sqrt", math.Sqrt),
		runtime.CapabilityFunc{CapName: "min", Fn: mathMin},
		runtime.CapabilityFunc{CapName: "max", Fn: mathMax},
		runtime.CapabilityFunc{CapName: "pow", Fn: mathPow},
	}
	for _, cap := range caps {
		if err := d.Register("math", cap); err != nil {
			return err
		}
	}
	return nil
}

func arityError(op string, want, got int) error {
	return fmt.Errorf("%s: expected %d arguments, got %d", op, want, got)
}

func unaryMath(name string, fn func(float64) float64) runtime.Capability {
	return runtime.CapabilityFunc{CapName: name, Fn: func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, arityError(name, 1, len(args))
		}
		x, err := object.AsNumber(name, args[0])
		if err != nil {
			return nil, err
		}
		return object.Number(fn(x)), nil
	}}
}

func twoNumbers(op string, args []runtime.Value) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, arityError(op, 2, len(args))
	}
	a, err := object.AsNumber(op, args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := object.AsNumber(op, args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func mathMin(args []runtime.Value) (runtime.Value, error) {
	a, b, err := twoNumbers("min", args)
	if err != nil {
		return nil, err
	}
	return object.Number(math.Min(a, b)), nil
}

func mathMax(args []runtime.Value) (runtime.Value, error) {
	a, b, err := twoNumbers("max", args)
	if err != nil {
		return nil, err
	}
	return object.Number(math.Max(a, b)), nil
}

func mathPow(args []runtime.Value) (runtime.Value, error) {
	a, b, err := twoNumbers("pow", args)
	if err != nil {
		return nil, err
	}
	return object.Number(math.Pow(a, b)), nil
}
