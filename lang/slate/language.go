// Package slate implements a small brace-delimited language on top of the
// generic lexing and parsing kernel. Its programs are trees of polymorphic
// nodes evaluated directly; the canonical-instruction engine under instr is
// the alternative execution strategy.
package slate

import (
	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/runtime"
)

// Slate bundles the registered grammar of the language. Build one with New
// and reuse it across programs; the registry freezes on first use.
type Slate struct {
	reg      *kernel.Registry
	handlers *kernel.HandlerSet
	norm     kernel.Normalizer
}

// New registers the slate grammar. Registration conflicts surface here as
// configuration errors rather than at parse time.
func New() (*Slate, error) {
	reg := kernel.NewRegistry()

	if err := reg.RegisterAll(kernel.RoleSkip, " ", "\t", "\r"); err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(kernel.RoleTerminator, "\n", ";"); err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(kernel.RoleDelimiter, "(", ")", "{", "}", ","); err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(kernel.RoleKeyword,
		"let", "fn", "memo", "while", "if", "else",
		"return", "break", "continue", "print", "extern",
		"true", "false", "null"); err != nil {
		return nil, err
	}
	if err := reg.SetFallback(kernel.Fallback{
		Idents:      true,
		Numbers:     true,
		StringQuote: '"',
		LineComment: "//",
	}); err != nil {
		return nil, err
	}

	type binOp struct {
		lexeme string
		prec   int
		assoc  kernel.Assoc
	}
	binOps := []binOp{
		{"||", precOr, kernel.AssocLeft},
		{"&&", precAnd, kernel.AssocLeft},
		{"==", precEquality, kernel.AssocLeft},
		{"!=", precEquality, kernel.AssocLeft},
		{"<", precCompare, kernel.AssocLeft},
		{"<=", precCompare, kernel.AssocLeft},
		{">", precCompare, kernel.AssocLeft},
		{">=", precCompare, kernel.AssocLeft},
		{"+", precSum, kernel.AssocLeft},
		{"-", precSum, kernel.AssocLeft},
		{"*", precProduct, kernel.AssocLeft},
		{"/", precProduct, kernel.AssocLeft},
		{"%", precProduct, kernel.AssocLeft},
		{"^", precPower, kernel.AssocRight},
	}
	for _, op := range binOps {
		if err := reg.RegisterBinary(op.lexeme, op.prec, op.assoc); err != nil {
			return nil, err
		}
	}
	for _, op := range []string{"-", "!"} {
		if err := reg.RegisterUnary(op, precUnary); err != nil {
			return nil, err
		}
	}
	// "=" is not an operator: assignment is a statement form.
	if err := reg.Register("=", kernel.RoleDelimiter); err != nil {
		return nil, err
	}

	handlers := kernel.NewHandlerSet().
		Prefix(
			numberPrefix{},
			stringPrefix{},
			constPrefix{},
			externPrefix{},
			identPrefix{},
			groupPrefix{},
			unaryPrefix{op: "-"},
			unaryPrefix{op: "!"},
		).
		Stmt(
			keywordStmt{"let", parseLet},
			keywordStmt{"fn", parseFn},
			keywordStmt{"memo", parseFn},
			keywordStmt{"while", parseWhile},
			keywordStmt{"if", parseIf},
			keywordStmt{"return", parseReturn},
			keywordStmt{"break", parseBreak},
			keywordStmt{"continue", parseContinue},
			keywordStmt{"print", parsePrint},
			assignStmt{},
			exprStmt{},
		)
	for _, op := range binOps {
		handlers.Infix(binaryInfix{op: op.lexeme, prec: op.prec, right: op.assoc == kernel.AssocRight})
	}

	return &Slate{
		reg:      reg,
		handlers: handlers,
		norm: kernel.BraceDelims(map[string]string{
			"{": "}",
			"(": ")",
		}),
	}, nil
}

// Parse lexes, normalizes and parses one source text into a program.
func (s *Slate) Parse(src string) (*kernel.Program, error) {
	toks, err := kernel.NewLexer(src, s.reg).Tokenize()
	if err != nil {
		return nil, err
	}
	toks, err = s.norm(toks, src)
	if err != nil {
		return nil, err
	}
	return kernel.NewParser(s.reg, s.handlers, toks).ParseProgram()
}

// Run parses and evaluates a program in the given environment. The result is
// the value of a top-level return, or the value of the last statement.
func (s *Slate) Run(src string, env *runtime.Env) (runtime.Value, error) {
	prog, err := s.Parse(src)
	if err != nil {
		return nil, err
	}
	return prog.Run(env)
}
