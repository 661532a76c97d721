package extern

import (
	"strings"

	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/runtime"
)

// RegisterStrings adds the string utility capabilities to the dispatcher
// under the "strings" backend.
func RegisterStrings(d *runtime.Dispatcher) error {
	caps := []runtime.Capability{
		runtime.CapabilityFunc{CapName: "upper", Fn: stringsUpper},
		runtime.CapabilityFunc{CapName: "lower", Fn: stringsLower},
		runtime.CapabilityFunc{CapName: "length", Fn: stringsLength},
		runtime.CapabilityFunc{CapName: "contains", Fn: stringsContains},
		runtime.CapabilityFunc{CapName: "trim", Fn: stringsTrim},
		runtime.CapabilityFunc{CapName: "join", Fn: stringsJoin},
	}
	for _, cap := range caps {
		if err := d.Register("strings", cap); err != nil {
			return err
		}
	}
	return nil
}

func oneString(op string, args []runtime.Value) (string, error) {
	if len(args) != 1 {
		return "", arityError(op, 1, len(args))
	}
	return object.AsString(op, args[0])
}

func stringsUpper(args []runtime.Value) (runtime.Value, error) {
	s, err := oneString("upper", args)
	if err != nil {
		return nil, err
	}
	return object.Str(strings.ToUpper(s)), nil
}

func stringsLower(args []runtime.Value) (runtime.Value, error) {
	s, err := oneString("lower", args)
	if err != nil {
		return nil, err
	}
	return object.Str(strings.ToLower(s)), nil
}

func stringsLength(args []runtime.Value) (runtime.Value, error) {
	s, err := oneString("length", args)
	if err != nil {
		return nil, err
	}
	return object.Number(len(s)), nil
}

func stringsContains(args []runtime.Value) (runtime.Value, error) {
	if len(args) != 2 {
		return nil, arityError("contains", 2, len(args))
	}
	haystack, err := object.AsString("contains", args[0])
	if err != nil {
		return nil, err
	}
	needle, err := object.AsString("contains", args[1])
	if err != nil {
		return nil, err
	}
	return object.Bool(strings.Contains(haystack, needle)), nil
}

func stringsTrim(args []runtime.Value) (runtime.Value, error) {
	s, err := oneString("trim", args)
	if err != nil {
		return nil, err
	}
	return object.Str(strings.TrimSpace(s)), nil
}

func stringsJoin(args []runtime.Value) (runtime.Value, error) {
	if len(args) < 1 {
		return nil, arityError("join", 1, len(args))
	}
	sep, err := object.AsString("join", args[0])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(args)-1)
	for i, arg := range args[1:] {
		parts[i] = arg.Display()
	}
	return object.Str(strings.Join(parts, sep)), nil
}
