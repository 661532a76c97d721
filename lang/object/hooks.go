package object

import (
	"strconv"

	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/runtime"
)

// Hooks materializes literals into the stock value types and applies the
// stock operator table. Schema-defined languages that do not need custom
// values run on these.
type Hooks struct{}

func (Hooks) Literal(role kernel.Role, lexeme string) (runtime.Value, error) {
	switch role {
	case kernel.RoleString:
		return Str(lexeme), nil
	case kernel.RoleNumber:
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return nil, &kernel.LexError{Msg: "malformed number literal " + lexeme}
		}
		return Number(f), nil
	case kernel.RoleKeyword:
		switch lexeme {
		case "true", "True":
			return Bool(true), nil
		case "false", "False":
			return Bool(false), nil
		case "null", "nil", "None":
			return Null{}, nil
		}
	}
	return nil, &kernel.LexError{Msg: "unknown literal " + lexeme}
}

func (Hooks) Operate(op string, operands []runtime.Value) (runtime.Value, error) {
	return Operate(op, operands)
}
