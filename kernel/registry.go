package kernel

import (
	"sort"
)

// ---------------------------------------------------------------------------
// Registry: write-once-then-read-many language configuration
// ---------------------------------------------------------------------------

// Assoc is operator associativity.
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
	AssocNone
)

// OpInfo describes a binary operator: its precedence (higher binds tighter)
// and associativity.
type OpInfo struct {
	Precedence int
	Assoc      Assoc
}

// PatternElem is one expected element of a statement pattern.
type PatternElem int

const (
	PatExpr PatternElem = iota
	PatName
	PatParams
	PatBlock
	PatString
)

// StatementPattern declares the shape of a keyword-led statement and the
// canonical action it compiles to. Purely descriptive: the schema-driven
// compiler interprets the Action tag, the pattern itself carries no behavior.
type StatementPattern struct {
	Keyword string
	Elems   []PatternElem
	Action  string

	// Selector names the extern capability an "invoke" action dispatches
	// to (e.g. a print statement desugaring to console output).
	Selector string

	// ElseKeyword, when non-empty, allows an optional trailing
	// else-clause (a further block) after the pattern's elements.
	ElseKeyword string

	// Optional marks the trailing elements as omissible (e.g. the value of
	// a bare return).
	Optional bool
}

// Fallback configures the lexer's accumulation rules for positions where no
// registered lexeme matches.
type Fallback struct {
	Idents      bool   // letter/underscore then letters/digits/underscores
	Numbers     bool   // digits with an optional fractional part
	StringQuote byte   // quote byte for string literals; 0 disables
	LineComment string // lexeme that skips to end of line; "" disables
}

// Registry holds a language's registrable lexemes, skip set, operator tables
// and statement patterns. It is populated once during language registration
// and read-only afterwards: the first lexer or parser constructed over it
// freezes it, and later registration attempts are configuration errors.
type Registry struct {
	roles    map[string]Role
	binOps   map[string]OpInfo
	unOps    map[string]int
	patterns map[string]StatementPattern
	fallback Fallback

	frozen bool
	sorted []string // registered lexemes, descending length
}

// NewRegistry creates an empty registry with identifier and number fallback
// rules enabled.
func NewRegistry() *Registry {
	return &Registry{
		roles:    make(map[string]Role),
		binOps:   make(map[string]OpInfo),
		unOps:    make(map[string]int),
		patterns: make(map[string]StatementPattern),
		fallback: Fallback{Idents: true, Numbers: true},
	}
}

// Register adds a lexeme under the given role. Registering the same literal
// under two different roles is a configuration error, reported here rather
// than at parse time.
func (r *Registry) Register(lexeme string, role Role) error {
	if err := r.writable("lexeme " + lexeme); err != nil {
		return err
	}
	if lexeme == "" {
		return configErrorf("cannot register empty lexeme")
	}
	if prev, ok := r.roles[lexeme]; ok && prev != role {
		return configErrorf("lexeme %q registered as both %s and %s", lexeme, prev, role)
	}
	r.roles[lexeme] = role
	return nil
}

// RegisterAll registers every lexeme under the same role.
func (r *Registry) RegisterAll(role Role, lexemes ...string) error {
	for _, lx := range lexemes {
		if err := r.Register(lx, role); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBinary records precedence and associativity for a binary operator
// lexeme, registering the lexeme itself as an operator.
func (r *Registry) RegisterBinary(lexeme string, prec int, assoc Assoc) error {
	if err := r.Register(lexeme, RoleOperator); err != nil {
		return err
	}
	if prev, ok := r.binOps[lexeme]; ok && prev != (OpInfo{Precedence: prec, Assoc: assoc}) {
		return configErrorf("operator %q registered with conflicting precedence", lexeme)
	}
	r.binOps[lexeme] = OpInfo{Precedence: prec, Assoc: assoc}
	return nil
}

// RegisterUnary records a prefix operator lexeme and its precedence.
func (r *Registry) RegisterUnary(lexeme string, prec int) error {
	if err := r.Register(lexeme, RoleOperator); err != nil {
		return err
	}
	if prev, ok := r.unOps[lexeme]; ok && prev != prec {
		return configErrorf("unary operator %q registered with conflicting precedence", lexeme)
	}
	r.unOps[lexeme] = prec
	return nil
}

// RegisterStatement records a keyword-led statement pattern. Two patterns for
// the same leading keyword are ambiguous and rejected.
func (r *Registry) RegisterStatement(p StatementPattern) error {
	if err := r.writable("statement " + p.Keyword); err != nil {
		return err
	}
	if _, ok := r.patterns[p.Keyword]; ok {
		return configErrorf("ambiguous statement pattern: keyword %q registered twice", p.Keyword)
	}
	if err := r.Register(p.Keyword, RoleKeyword); err != nil {
		return err
	}
	r.patterns[p.Keyword] = p
	return nil
}

// SetFallback replaces the lexer fallback rules.
func (r *Registry) SetFallback(f Fallback) error {
	if err := r.writable("fallback"); err != nil {
		return err
	}
	r.fallback = f
	return nil
}

func (r *Registry) writable(what string) error {
	if r.frozen {
		return configErrorf("registry is frozen; cannot register %s", what)
	}
	return nil
}

// freeze seals the registry and sorts lexemes by descending length so that
// maximal-munch matching is deterministic.
func (r *Registry) freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	r.sorted = make([]string, 0, len(r.roles))
	for lx := range r.roles {
		r.sorted = append(r.sorted, lx)
	}
	sort.Slice(r.sorted, func(i, j int) bool {
		if len(r.sorted[i]) != len(r.sorted[j]) {
			return len(r.sorted[i]) > len(r.sorted[j])
		}
		return r.sorted[i] < r.sorted[j]
	})
}

// Lexemes returns all registered lexemes in descending length order,
// freezing the registry.
func (r *Registry) Lexemes() []string {
	r.freeze()
	return r.sorted
}

// Role returns the registered role for a lexeme, or RoleNone.
func (r *Registry) Role(lexeme string) Role {
	return r.roles[lexeme]
}

// IsSkip reports whether a lexeme is recognized but never emitted.
func (r *Registry) IsSkip(lexeme string) bool {
	return r.roles[lexeme] == RoleSkip
}

// Binary returns operator info for a binary operator lexeme.
func (r *Registry) Binary(lexeme string) (OpInfo, bool) {
	op, ok := r.binOps[lexeme]
	return op, ok
}

// Unary returns the precedence of a prefix operator lexeme.
func (r *Registry) Unary(lexeme string) (int, bool) {
	prec, ok := r.unOps[lexeme]
	return prec, ok
}

// Pattern returns the statement pattern for a leading keyword.
func (r *Registry) Pattern(keyword string) (StatementPattern, bool) {
	p, ok := r.patterns[keyword]
	return p, ok
}

// Fallback returns the lexer fallback rules.
func (r *Registry) Fallback() Fallback {
	return r.fallback
}
