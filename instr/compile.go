package instr

import (
	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/schema"
)

// ---------------------------------------------------------------------------
// Compiler: schema-driven translation of source text to instruction trees
// ---------------------------------------------------------------------------

// Compiler turns source text into canonical instruction trees using a
// declarative language schema. One Compiler serves many programs; each
// Compile call is independent.
type Compiler struct {
	lang     *schema.Language
	reg      *kernel.Registry
	norm     kernel.Normalizer
	literals map[string]bool
}

// NewCompiler validates the schema and builds its registry.
func NewCompiler(lang *schema.Language) (*Compiler, error) {
	reg, err := lang.Registry()
	if err != nil {
		return nil, err
	}
	lits := make(map[string]bool, len(lang.Literals))
	for _, l := range lang.Literals {
		lits[l] = true
	}
	return &Compiler{lang: lang, reg: reg, norm: lang.Normalizer(), literals: lits}, nil
}

// Language returns the schema this compiler was built from.
func (c *Compiler) Language() *schema.Language {
	return c.lang
}

// Compile tokenizes, normalizes and parses one program.
func (c *Compiler) Compile(src string) (*Program, error) {
	toks, err := kernel.NewLexer(src, c.reg).Tokenize()
	if err != nil {
		return nil, err
	}
	toks, err = c.norm(toks, src)
	if err != nil {
		return nil, err
	}

	b := &build{
		c:     c,
		p:     kernel.NewParser(c.reg, nil, toks),
		funcs: make(map[string]*Function),
	}
	var stmts []*Instruction
	b.p.SkipTerminators()
	for !b.p.AtEOF() {
		in, err := b.parseStmt()
		if err != nil {
			return nil, err
		}
		if in != nil {
			stmts = append(stmts, in)
		}
		b.p.SkipTerminators()
	}
	return &Program{Body: Seq(stmts...), Funcs: b.funcs}, nil
}

// build is the per-program parse state.
type build struct {
	c     *Compiler
	p     *kernel.Parser
	funcs map[string]*Function
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// parseStmt may return a nil instruction for statements that compile to
// nothing at the evaluation site (function definitions).
func (b *build) parseStmt() (*Instruction, error) {
	tok := b.p.Peek()

	if tok.Role == kernel.RoleKeyword && !b.c.literals[tok.Lexeme] {
		if pat, ok := b.p.Registry().Pattern(tok.Lexeme); ok {
			return b.parsePattern(pat)
		}
	}

	// name = expr
	if tok.Role == kernel.RoleIdent && b.c.lang.Assign != "" && b.p.PeekN(1).Is(b.c.lang.Assign) {
		name := b.p.Advance()
		b.p.Advance() // assignment lexeme
		expr, err := b.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return Assign(name.Lexeme, expr, name.Span.Cover(expr.Span)), nil
	}

	return b.parseExpr(0)
}

func (b *build) parsePattern(pat kernel.StatementPattern) (*Instruction, error) {
	kw := b.p.Advance()

	var exprs []*Instruction
	var blocks []*Instruction
	var name string
	var params []string
	var str kernel.Token

	for _, el := range pat.Elems {
		switch el {
		case kernel.PatExpr:
			if pat.Optional && b.atStatementEnd() {
				continue
			}
			e, err := b.parseExpr(0)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		case kernel.PatName:
			tok, err := b.p.ExpectRole(kernel.RoleIdent)
			if err != nil {
				return nil, err
			}
			name = tok.Lexeme
		case kernel.PatParams:
			ps, err := b.parseParams()
			if err != nil {
				return nil, err
			}
			params = ps
		case kernel.PatBlock:
			blk, err := b.parseBlock()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, blk)
		case kernel.PatString:
			tok, err := b.p.ExpectRole(kernel.RoleString)
			if err != nil {
				return nil, err
			}
			str = tok
		}
	}

	switch pat.Action {
	case schema.ActionLoop:
		return Loop(exprs[0], blocks[0]), nil

	case schema.ActionBranch:
		var els *Instruction
		if pat.ElseKeyword != "" {
			// Brace languages put the else on the line after the closing
			// brace; the separating terminators are not significant.
			b.p.SkipTerminators()
		}
		if pat.ElseKeyword != "" && b.p.Peek().Is(pat.ElseKeyword) {
			b.p.Advance()
			// An else-if chain parses as a nested branch in the else slot.
			if nested, ok := b.p.Registry().Pattern(b.p.Peek().Lexeme); ok && nested.Action == schema.ActionBranch && b.p.Peek().Role == kernel.RoleKeyword {
				in, err := b.parsePattern(nested)
				if err != nil {
					return nil, err
				}
				els = in
			} else {
				blk, err := b.parseBlock()
				if err != nil {
					return nil, err
				}
				els = blk
			}
		}
		return Branch(exprs[0], blocks[0], els), nil

	case schema.ActionBreak:
		return TransferOf(TransferBreak, nil, kw.Span), nil

	case schema.ActionContinue:
		return TransferOf(TransferContinue, nil, kw.Span), nil

	case schema.ActionReturn:
		var val *Instruction
		if len(exprs) > 0 {
			val = exprs[0]
		}
		return TransferOf(TransferReturn, val, kw.Span), nil

	case schema.ActionInvoke:
		return Invoke(pat.Selector, kw.Span, exprs...), nil

	case schema.ActionExtern:
		args, err := b.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return Invoke(str.Lexeme, kw.Span.Cover(str.Span), args...), nil

	case schema.ActionFunc:
		if _, dup := b.funcs[name]; dup {
			return nil, b.p.Errorf("function %q defined twice", name)
		}
		b.funcs[name] = &Function{Name: name, Params: params, Body: blocks[0]}
		return nil, nil

	case schema.ActionPass:
		return Seq(), nil
	}

	return nil, b.p.Errorf("statement %q has unknown action %q", pat.Keyword, pat.Action)
}

func (b *build) atStatementEnd() bool {
	r := b.p.Peek().Role
	return r == kernel.RoleTerminator || r == kernel.RoleBlockEnd || r == kernel.RoleEOF
}

func (b *build) parseParams() ([]string, error) {
	if _, err := b.p.Expect("("); err != nil {
		return nil, err
	}
	var params []string
	if b.p.Match(")") {
		return params, nil
	}
	for {
		tok, err := b.p.ExpectRole(kernel.RoleIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Lexeme)
		if b.p.Match(")") {
			return params, nil
		}
		if _, err := b.p.Expect(","); err != nil {
			return nil, err
		}
	}
}

// parseBlock parses a block in the language's style and wraps it in a Scope.
func (b *build) parseBlock() (*Instruction, error) {
	var stmts []*Instruction

	if b.c.lang.BlockStyle == "indent" {
		if _, err := b.p.Expect(b.c.lang.BlockOpen); err != nil {
			return nil, err
		}
		b.p.SkipTerminators()
		if _, err := b.p.ExpectRole(kernel.RoleBlockStart); err != nil {
			return nil, err
		}
		b.p.SkipTerminators()
		for b.p.Peek().Role != kernel.RoleBlockEnd {
			if b.p.AtEOF() {
				return nil, b.p.Errorf("unterminated block")
			}
			in, err := b.parseStmt()
			if err != nil {
				return nil, err
			}
			if in != nil {
				stmts = append(stmts, in)
			}
			b.p.SkipTerminators()
		}
		b.p.Advance() // block end
		return Scope(Seq(stmts...)), nil
	}

	if _, err := b.p.Expect(b.c.lang.BlockOpen); err != nil {
		return nil, err
	}
	b.p.SkipTerminators()
	for !b.p.Peek().Is(b.c.lang.BlockClose) {
		if b.p.AtEOF() {
			return nil, b.p.Errorf("unterminated block, expected %q", b.c.lang.BlockClose)
		}
		in, err := b.parseStmt()
		if err != nil {
			return nil, err
		}
		if in != nil {
			stmts = append(stmts, in)
		}
		b.p.SkipTerminators()
	}
	b.p.Advance() // closing delimiter
	return Scope(Seq(stmts...)), nil
}

// ---------------------------------------------------------------------------
// Expressions: precedence climbing over the schema's operator tables
// ---------------------------------------------------------------------------

func (b *build) parseExpr(minPrec int) (*Instruction, error) {
	left, err := b.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := b.p.Peek()
		if tok.Role != kernel.RoleOperator {
			return left, nil
		}
		op, ok := b.p.Registry().Binary(tok.Lexeme)
		if !ok || op.Precedence < minPrec {
			return left, nil
		}
		b.p.Advance()

		next := op.Precedence + 1
		if op.Assoc == kernel.AssocRight {
			next = op.Precedence
		}
		right, err := b.parseExpr(next)
		if err != nil {
			return nil, err
		}
		left = Operate(tok.Lexeme, left.Span.Cover(right.Span), left, right)

		if op.Assoc == kernel.AssocNone {
			if again, ok := b.p.Registry().Binary(b.p.Peek().Lexeme); ok && again.Precedence == op.Precedence && again.Assoc == kernel.AssocNone {
				return nil, b.p.Errorf("operator %q is not associative", b.p.Peek().Lexeme)
			}
		}
	}
}

func (b *build) parsePrimary() (*Instruction, error) {
	tok := b.p.Peek()

	switch {
	case tok.Role == kernel.RoleNumber, tok.Role == kernel.RoleString:
		b.p.Advance()
		return Const(tok.Role, tok.Lexeme, tok.Span), nil

	case tok.Role == kernel.RoleKeyword && b.c.literals[tok.Lexeme]:
		b.p.Advance()
		return Const(kernel.RoleKeyword, tok.Lexeme, tok.Span), nil

	case tok.Role == kernel.RoleKeyword:
		// Extern calls are the only keyword-led expressions.
		if pat, ok := b.p.Registry().Pattern(tok.Lexeme); ok && pat.Action == schema.ActionExtern {
			b.p.Advance()
			sel, err := b.p.ExpectRole(kernel.RoleString)
			if err != nil {
				return nil, err
			}
			args, err := b.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return Invoke(sel.Lexeme, tok.Span.Cover(sel.Span), args...), nil
		}
		return nil, b.p.Errorf("expected expression, found %s", tok)

	case tok.Role == kernel.RoleIdent:
		b.p.Advance()
		if b.p.Peek().Is("(") {
			args, err := b.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return Invoke(tok.Lexeme, tok.Span, args...), nil
		}
		return Load(tok.Lexeme, tok.Span), nil

	case tok.Is("("):
		b.p.Advance()
		// Grouping resets the precedence threshold.
		e, err := b.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := b.p.Expect(")"); err != nil {
			return nil, err
		}
		return e, nil

	case tok.Role == kernel.RoleOperator:
		if prec, ok := b.p.Registry().Unary(tok.Lexeme); ok {
			b.p.Advance()
			operand, err := b.parseExpr(prec)
			if err != nil {
				return nil, err
			}
			// Unary and binary uses of one lexeme share the Operate tag;
			// operand count disambiguates at evaluation time.
			return Operate(tok.Lexeme, tok.Span.Cover(operand.Span), operand), nil
		}
	}

	if tok.Role == kernel.RoleEOF {
		return nil, b.p.Errorf("expected expression, found end of input")
	}
	return nil, b.p.Errorf("expected expression, found %s", tok)
}

func (b *build) parseCallArgs() ([]*Instruction, error) {
	if _, err := b.p.Expect("("); err != nil {
		return nil, err
	}
	var args []*Instruction
	if b.p.Match(")") {
		return args, nil
	}
	for {
		arg, err := b.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if b.p.Match(")") {
			return args, nil
		}
		if _, err := b.p.Expect(","); err != nil {
			return nil, err
		}
	}
}
