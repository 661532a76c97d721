package kernel

import "fmt"

// ---------------------------------------------------------------------------
// Parser: generic precedence-climbing engine over registered handlers
// ---------------------------------------------------------------------------

// PrefixHandler parses an expression that begins at the current token:
// literals, identifiers, prefix operators, grouping.
type PrefixHandler interface {
	// Matches reports whether this handler starts at the parser's current
	// token. The first registered matching handler wins.
	Matches(p *Parser) bool
	Parse(p *Parser) (Expr, error)
}

// InfixHandler parses an operator applied to an already-parsed left operand.
// The engine consults Precedence before dispatching; Parse is responsible
// for consuming the operator token and the right operand, recursing at
// Precedence()+1 for left-associative operators and at Precedence() for
// right-associative ones.
type InfixHandler interface {
	Matches(tok Token) bool
	Precedence() int
	Parse(p *Parser, left Expr) (Expr, error)
}

// StmtHandler parses a statement that begins at the current token.
type StmtHandler interface {
	Matches(p *Parser) bool
	Parse(p *Parser) (Stmt, error)
}

// HandlerSet is the registered grammar of a tree-walking language. Handlers
// are tried in registration order; ties go to the first registered.
type HandlerSet struct {
	prefix []PrefixHandler
	infix  []InfixHandler
	stmts  []StmtHandler
}

// NewHandlerSet creates an empty handler set.
func NewHandlerSet() *HandlerSet {
	return &HandlerSet{}
}

// Prefix registers prefix handlers.
func (h *HandlerSet) Prefix(handlers ...PrefixHandler) *HandlerSet {
	h.prefix = append(h.prefix, handlers...)
	return h
}

// Infix registers infix handlers.
func (h *HandlerSet) Infix(handlers ...InfixHandler) *HandlerSet {
	h.infix = append(h.infix, handlers...)
	return h
}

// Stmt registers statement handlers.
func (h *HandlerSet) Stmt(handlers ...StmtHandler) *HandlerSet {
	h.stmts = append(h.stmts, handlers...)
	return h
}

// Parser walks a token stream, dispatching to the registered handlers. It
// holds no language knowledge beyond what the registry and handler set
// supply, and it is discarded after producing one program.
type Parser struct {
	reg      *Registry
	handlers *HandlerSet
	toks     []Token
	pos      int
}

// NewParser creates a parser over an already-tokenized (and normalized)
// stream. The stream must end with an EOF token.
func NewParser(reg *Registry, handlers *HandlerSet, toks []Token) *Parser {
	reg.freeze()
	if handlers == nil {
		handlers = NewHandlerSet()
	}
	return &Parser{reg: reg, handlers: handlers, toks: toks}
}

// Registry exposes the language configuration to handlers.
func (p *Parser) Registry() *Registry {
	return p.reg
}

// ---------------------------------------------------------------------------
// Cursor primitives
// ---------------------------------------------------------------------------

// Peek returns the current token without consuming it.
func (p *Parser) Peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Role: RoleEOF}
	}
	return p.toks[p.pos]
}

// PeekN returns the token n positions ahead.
func (p *Parser) PeekN(n int) Token {
	if p.pos+n >= len(p.toks) {
		return Token{Role: RoleEOF}
	}
	return p.toks[p.pos+n]
}

// Advance consumes and returns the current token.
func (p *Parser) Advance() Token {
	tok := p.Peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

// Match consumes the current token if it carries the given lexeme.
func (p *Parser) Match(lexeme string) bool {
	if p.Peek().Is(lexeme) {
		p.pos++
		return true
	}
	return false
}

// MatchRole consumes the current token if it has the given role.
func (p *Parser) MatchRole(role Role) (Token, bool) {
	if p.Peek().Role == role {
		return p.Advance(), true
	}
	return Token{}, false
}

// Expect consumes the current token if it carries the given lexeme, or
// fails with a parse error at the current span.
func (p *Parser) Expect(lexeme string) (Token, error) {
	tok := p.Peek()
	if tok.Role == RoleEOF {
		return Token{}, p.Errorf("expected %q, found end of input", lexeme)
	}
	if !tok.Is(lexeme) {
		return Token{}, p.Errorf("expected %q, found %s", lexeme, tok)
	}
	return p.Advance(), nil
}

// ExpectRole consumes the current token if it has the given role.
func (p *Parser) ExpectRole(role Role) (Token, error) {
	tok := p.Peek()
	if tok.Role != role {
		return Token{}, p.Errorf("expected %s, found %s", role, tok)
	}
	return p.Advance(), nil
}

// AtEOF reports whether all tokens are consumed.
func (p *Parser) AtEOF() bool {
	return p.Peek().Role == RoleEOF
}

// SkipTerminators consumes any run of terminator tokens.
func (p *Parser) SkipTerminators() {
	for p.Peek().Role == RoleTerminator {
		p.pos++
	}
}

// Errorf builds a parse error at the current token's span.
func (p *Parser) Errorf(format string, args ...any) error {
	return &ParseError{Span: p.Peek().Span, Msg: fmt.Sprintf(format, args...)}
}

// ---------------------------------------------------------------------------
// Precedence climbing
// ---------------------------------------------------------------------------

// ParseExpr parses one expression at the lowest precedence threshold.
// Grouping handlers call this to reset the threshold inside brackets.
func (p *Parser) ParseExpr() (Expr, error) {
	return p.ParseExprPrec(0)
}

// ParseExprPrec parses a prefix term, then folds in infix operators whose
// precedence is at least minPrec.
func (p *Parser) ParseExprPrec(minPrec int) (Expr, error) {
	prefix := p.findPrefix()
	if prefix == nil {
		tok := p.Peek()
		if tok.Role == RoleEOF {
			return nil, p.Errorf("expected expression, found end of input")
		}
		return nil, p.Errorf("expected expression, found %s", tok)
	}
	left, err := prefix.Parse(p)
	if err != nil {
		return nil, err
	}

	for {
		infix := p.findInfix(p.Peek())
		if infix == nil || infix.Precedence() < minPrec {
			return left, nil
		}
		left, err = infix.Parse(p, left)
		if err != nil {
			return nil, err
		}
	}
}

// ParseStmt parses one statement via the registered statement handlers.
func (p *Parser) ParseStmt() (Stmt, error) {
	for _, h := range p.handlers.stmts {
		if h.Matches(p) {
			return h.Parse(p)
		}
	}
	return nil, p.Errorf("expected statement, found %s", p.Peek())
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	p.SkipTerminators()
	for !p.AtEOF() {
		stmt, err := p.ParseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
		p.SkipTerminators()
	}
	return prog, nil
}

func (p *Parser) findPrefix() PrefixHandler {
	for _, h := range p.handlers.prefix {
		if h.Matches(p) {
			return h
		}
	}
	return nil
}

func (p *Parser) findInfix(tok Token) InfixHandler {
	for _, h := range p.handlers.infix {
		if h.Matches(tok) {
			return h
		}
	}
	return nil
}
