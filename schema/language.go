// Package schema defines declarative language descriptions for the
// canonical-instruction engine. A Language is purely data: lexical tables,
// operator precedences and statement patterns. It carries no executable
// logic; the kernel interprets it.
package schema

import (
	"fmt"

	"github.com/substrate-lang/substrate/kernel"
)

// Operator describes one operator lexeme.
type Operator struct {
	Lexeme     string `toml:"lexeme"`
	Precedence int    `toml:"precedence"`
	Assoc      string `toml:"assoc"` // "left" (default), "right", "none"
}

// Statement describes one keyword-led statement pattern.
type Statement struct {
	Keyword  string   `toml:"keyword"`
	Elements []string `toml:"elements"` // "expr", "name", "params", "block", "string"
	Action   string   `toml:"action"`
	Selector string   `toml:"selector"`
	Else     string   `toml:"else"`
	Optional bool     `toml:"optional"`
}

// Canonical action tags a Statement may compile to.
const (
	ActionLoop     = "loop"
	ActionBranch   = "branch"
	ActionBreak    = "break"
	ActionContinue = "continue"
	ActionReturn   = "return"
	ActionInvoke   = "invoke"
	ActionExtern   = "extern"
	ActionFunc     = "func"
	ActionPass     = "pass"
)

var knownActions = map[string]bool{
	ActionLoop:     true,
	ActionBranch:   true,
	ActionBreak:    true,
	ActionContinue: true,
	ActionReturn:   true,
	ActionInvoke:   true,
	ActionExtern:   true,
	ActionFunc:     true,
	ActionPass:     true,
}

// Language is a complete declarative schema for one front-end language.
type Language struct {
	Name       string `toml:"name"`
	BlockStyle string `toml:"block-style"` // "indent" or "braces"

	Skip        []string `toml:"skip"`
	Terminators []string `toml:"terminators"`
	Delimiters  []string `toml:"delimiters"`
	LineComment string   `toml:"line-comment"`
	StringQuote string   `toml:"string-quote"` // single byte; "" disables

	BlockOpen  string `toml:"block-open"`  // ":" for indent style, "{" for braces
	BlockClose string `toml:"block-close"` // "}" for braces; unused for indent

	Assign string `toml:"assign"` // assignment lexeme, e.g. "="

	// Literals are keyword-spelled constants ("True", "None"); the
	// language's value factory materializes them.
	Literals []string `toml:"literals"`

	Binary []Operator `toml:"binary"`
	Unary  []Operator `toml:"unary"`

	Statements []Statement `toml:"statement"`
}

// Validate checks the schema for internal consistency. It mirrors the
// registration-time checks: every problem found here would otherwise be a
// configuration error when the registry is built.
func (l *Language) Validate() error {
	if l.Name == "" {
		return &kernel.ConfigError{Msg: "schema: language name is required"}
	}
	switch l.BlockStyle {
	case "indent", "braces":
	default:
		return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: unknown block-style %q", l.Name, l.BlockStyle)}
	}
	if l.BlockStyle == "braces" && (l.BlockOpen == "" || l.BlockClose == "") {
		return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: braces style requires block-open and block-close", l.Name)}
	}
	if len(l.StringQuote) > 1 {
		return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: string-quote must be a single byte", l.Name)}
	}
	seen := make(map[string]bool)
	for _, st := range l.Statements {
		if st.Keyword == "" {
			return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: statement without keyword", l.Name)}
		}
		if seen[st.Keyword] {
			return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: ambiguous statement keyword %q", l.Name, st.Keyword)}
		}
		seen[st.Keyword] = true
		if !knownActions[st.Action] {
			return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: statement %q has unknown action %q", l.Name, st.Keyword, st.Action)}
		}
		if st.Action == ActionInvoke && st.Selector == "" {
			return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: statement %q needs a selector", l.Name, st.Keyword)}
		}
		for _, el := range st.Elements {
			if _, err := patternElem(el); err != nil {
				return &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: statement %q: %v", l.Name, st.Keyword, err)}
			}
		}
	}
	return nil
}

// Registry builds the kernel registry for this language: lexemes sorted for
// maximal munch, skip set, operator tables, statement patterns and lexer
// fallback rules.
func (l *Language) Registry() (*kernel.Registry, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	reg := kernel.NewRegistry()

	if err := reg.RegisterAll(kernel.RoleSkip, l.Skip...); err != nil {
		return nil, err
	}
	if l.BlockStyle == "indent" {
		// Raw newlines carry no information of their own: the indent
		// normalizer re-derives terminators from token line positions.
		if err := reg.Register("\n", kernel.RoleSkip); err != nil {
			return nil, err
		}
	}
	if err := reg.RegisterAll(kernel.RoleTerminator, l.Terminators...); err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(kernel.RoleDelimiter, l.Delimiters...); err != nil {
		return nil, err
	}
	if l.BlockOpen != "" {
		if err := reg.Register(l.BlockOpen, kernel.RoleDelimiter); err != nil {
			return nil, err
		}
	}
	if l.BlockClose != "" {
		if err := reg.Register(l.BlockClose, kernel.RoleDelimiter); err != nil {
			return nil, err
		}
	}
	if l.Assign != "" {
		if err := reg.Register(l.Assign, kernel.RoleOperator); err != nil {
			return nil, err
		}
	}
	if err := reg.RegisterAll(kernel.RoleKeyword, l.Literals...); err != nil {
		return nil, err
	}

	for _, op := range l.Binary {
		assoc, err := parseAssoc(op.Assoc)
		if err != nil {
			return nil, &kernel.ConfigError{Msg: fmt.Sprintf("schema %s: operator %q: %v", l.Name, op.Lexeme, err)}
		}
		if err := reg.RegisterBinary(op.Lexeme, op.Precedence, assoc); err != nil {
			return nil, err
		}
	}
	for _, op := range l.Unary {
		if err := reg.RegisterUnary(op.Lexeme, op.Precedence); err != nil {
			return nil, err
		}
	}

	for _, st := range l.Statements {
		pat, err := l.pattern(st)
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterStatement(pat); err != nil {
			return nil, err
		}
		if pat.ElseKeyword != "" {
			if err := reg.Register(pat.ElseKeyword, kernel.RoleKeyword); err != nil {
				return nil, err
			}
		}
	}

	var quote byte
	if l.StringQuote != "" {
		quote = l.StringQuote[0]
	}
	err := reg.SetFallback(kernel.Fallback{
		Idents:      true,
		Numbers:     true,
		StringQuote: quote,
		LineComment: l.LineComment,
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Normalizer returns the structural pass for this language's block style.
func (l *Language) Normalizer() kernel.Normalizer {
	if l.BlockStyle == "indent" {
		return kernel.IndentBlocks
	}
	pairs := map[string]string{l.BlockOpen: l.BlockClose}
	if contains(l.Delimiters, "(") && contains(l.Delimiters, ")") {
		pairs["("] = ")"
	}
	if contains(l.Delimiters, "[") && contains(l.Delimiters, "]") {
		pairs["["] = "]"
	}
	return kernel.BraceDelims(pairs)
}

func (l *Language) pattern(st Statement) (kernel.StatementPattern, error) {
	elems := make([]kernel.PatternElem, len(st.Elements))
	for i, el := range st.Elements {
		pe, err := patternElem(el)
		if err != nil {
			return kernel.StatementPattern{}, err
		}
		elems[i] = pe
	}
	return kernel.StatementPattern{
		Keyword:     st.Keyword,
		Elems:       elems,
		Action:      st.Action,
		Selector:    st.Selector,
		ElseKeyword: st.Else,
		Optional:    st.Optional,
	}, nil
}

func patternElem(name string) (kernel.PatternElem, error) {
	switch name {
	case "expr":
		return kernel.PatExpr, nil
	case "name":
		return kernel.PatName, nil
	case "params":
		return kernel.PatParams, nil
	case "block":
		return kernel.PatBlock, nil
	case "string":
		return kernel.PatString, nil
	}
	return 0, fmt.Errorf("unknown pattern element %q", name)
}

func parseAssoc(s string) (kernel.Assoc, error) {
	switch s {
	case "", "left":
		return kernel.AssocLeft, nil
	case "right":
		return kernel.AssocRight, nil
	case "none":
		return kernel.AssocNone, nil
	}
	return 0, fmt.Errorf("unknown associativity %q", s)
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
