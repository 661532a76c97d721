// Package pico defines an indentation-structured language as a declarative
// schema and runs it on the canonical-instruction engine. The whole grammar
// is data: Schema returns the same description that ships as pico.toml, and
// the hooks below are the only executable code the language contributes.
package pico

import (
	"strconv"

	"github.com/substrate-lang/substrate/instr"
	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/runtime"
	"github.com/substrate-lang/substrate/schema"
)

// Schema returns the pico language description.
func Schema() *schema.Language {
	return &schema.Language{
		Name:       "pico",
		BlockStyle: "indent",

		Skip:        []string{" ", "\t", "\r"},
		Delimiters:  []string{"(", ")", ","},
		LineComment: "#",
		StringQuote: `"`,
		BlockOpen:   ":",
		Assign:      "=",

		Literals: []string{"True", "False", "None"},

		Binary: []schema.Operator{
			{Lexeme: "or", Precedence: 10},
			{Lexeme: "and", Precedence: 20},
			{Lexeme: "==", Precedence: 30},
			{Lexeme: "!=", Precedence: 30},
			{Lexeme: "<", Precedence: 40},
			{Lexeme: "<=", Precedence: 40},
			{Lexeme: ">", Precedence: 40},
			{Lexeme: ">=", Precedence: 40},
			{Lexeme: "+", Precedence: 50},
			{Lexeme: "-", Precedence: 50},
			{Lexeme: "*", Precedence: 60},
			{Lexeme: "/", Precedence: 60},
			{Lexeme: "%", Precedence: 60},
			{Lexeme: "**", Precedence: 70, Assoc: "right"},
		},
		Unary: []schema.Operator{
			{Lexeme: "-", Precedence: 80},
			{Lexeme: "not", Precedence: 80},
		},

		Statements: []schema.Statement{
			{Keyword: "while", Elements: []string{"expr", "block"}, Action: schema.ActionLoop},
			{Keyword: "if", Elements: []string{"expr", "block"}, Action: schema.ActionBranch, Else: "else"},
			{Keyword: "def", Elements: []string{"name", "params", "block"}, Action: schema.ActionFunc},
			{Keyword: "return", Elements: []string{"expr"}, Action: schema.ActionReturn, Optional: true},
			{Keyword: "break", Action: schema.ActionBreak},
			{Keyword: "continue", Action: schema.ActionContinue},
			{Keyword: "pass", Action: schema.ActionPass},
			{Keyword: "print", Elements: []string{"expr"}, Action: schema.ActionInvoke, Selector: "console:println"},
			{Keyword: "extern", Elements: []string{"string"}, Action: schema.ActionExtern},
		},
	}
}

// Hooks materializes pico literals and applies pico operators. It is the
// language's entire contribution to execution.
type Hooks struct{}

func (Hooks) Literal(role kernel.Role, lexeme string) (runtime.Value, error) {
	switch role {
	case kernel.RoleString:
		return object.Str(lexeme), nil
	case kernel.RoleNumber:
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return nil, &kernel.LexError{Msg: "malformed number literal " + lexeme}
		}
		return object.Number(f), nil
	case kernel.RoleKeyword:
		switch lexeme {
		case "True":
			return object.Bool(true), nil
		case "False":
			return object.Bool(false), nil
		case "None":
			return object.Null{}, nil
		}
	}
	return nil, &kernel.LexError{Msg: "unknown literal " + lexeme}
}

func (Hooks) Operate(op string, operands []runtime.Value) (runtime.Value, error) {
	return object.Operate(op, operands)
}

// Pico bundles a compiler and executor for the language.
type Pico struct {
	compiler *instr.Compiler
	exec     *instr.Executor
}

// New builds the pico toolchain.
func New() (*Pico, error) {
	c, err := instr.NewCompiler(Schema())
	if err != nil {
		return nil, err
	}
	return &Pico{compiler: c, exec: instr.NewExecutor(Hooks{})}, nil
}

// Compile translates source text into a canonical program.
func (p *Pico) Compile(src string) (*instr.Program, error) {
	return p.compiler.Compile(src)
}

// Run compiles and executes a program in the given environment.
func (p *Pico) Run(src string, env *runtime.Env) (runtime.Value, error) {
	prog, err := p.Compile(src)
	if err != nil {
		return nil, err
	}
	return p.exec.Run(prog, env)
}
