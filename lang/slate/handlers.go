package slate

import (
	"strconv"

	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/lang/object"
)

// ---------------------------------------------------------------------------
// Operator precedence levels
// ---------------------------------------------------------------------------

const (
	precOr = 10 * (iota + 1)
	precAnd
	precEquality
	precCompare
	precSum
	precProduct
	precPower
	precUnary
)

// ---------------------------------------------------------------------------
// Prefix handlers
// ---------------------------------------------------------------------------

type numberPrefix struct{}

func (numberPrefix) Matches(p *kernel.Parser) bool {
	return p.Peek().Role == kernel.RoleNumber
}

func (numberPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	tok := p.Advance()
	f, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, &kernel.ParseError{Span: tok.Span, Msg: "malformed number literal " + tok.Lexeme}
	}
	return &NumberLit{Sp: tok.Span, Val: object.Number(f)}, nil
}

type stringPrefix struct{}

func (stringPrefix) Matches(p *kernel.Parser) bool {
	return p.Peek().Role == kernel.RoleString
}

func (stringPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	tok := p.Advance()
	return &StringLit{Sp: tok.Span, Val: object.Str(tok.Lexeme)}, nil
}

type constPrefix struct{}

func (constPrefix) Matches(p *kernel.Parser) bool {
	tok := p.Peek()
	if tok.Role != kernel.RoleKeyword {
		return false
	}
	switch tok.Lexeme {
	case "true", "false", "null":
		return true
	}
	return false
}

func (constPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	tok := p.Advance()
	switch tok.Lexeme {
	case "true":
		return &ConstLit{Sp: tok.Span, Val: object.Bool(true)}, nil
	case "false":
		return &ConstLit{Sp: tok.Span, Val: object.Bool(false)}, nil
	}
	return &ConstLit{Sp: tok.Span, Val: object.Null{}}, nil
}

type identPrefix struct{}

func (identPrefix) Matches(p *kernel.Parser) bool {
	return p.Peek().Role == kernel.RoleIdent
}

func (identPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	tok := p.Advance()
	if !p.Peek().Is("(") {
		return &Ident{Sp: tok.Span, Name: tok.Lexeme}, nil
	}
	args, err := parseArgs(p)
	if err != nil {
		return nil, err
	}
	return &Call{Sp: tok.Span, Name: tok.Lexeme, Args: args}, nil
}

type groupPrefix struct{}

func (groupPrefix) Matches(p *kernel.Parser) bool {
	return p.Peek().Is("(")
}

func (groupPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	p.Advance()
	// Grouping resets the precedence threshold inside the brackets.
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.Expect(")"); err != nil {
		return nil, err
	}
	return e, nil
}

type unaryPrefix struct {
	op string
}

func (u unaryPrefix) Matches(p *kernel.Parser) bool {
	return p.Peek().Is(u.op) && p.Peek().Role == kernel.RoleOperator
}

func (u unaryPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	tok := p.Advance()
	operand, err := p.ParseExprPrec(precUnary)
	if err != nil {
		return nil, err
	}
	return &Prefix{Sp: tok.Span.Cover(operand.Span()), Op: u.op, Operand: operand}, nil
}

type externPrefix struct{}

func (externPrefix) Matches(p *kernel.Parser) bool {
	return p.Peek().Is("extern") && p.Peek().Role == kernel.RoleKeyword
}

func (externPrefix) Parse(p *kernel.Parser) (kernel.Expr, error) {
	kw := p.Advance()
	sel, err := p.ExpectRole(kernel.RoleString)
	if err != nil {
		return nil, err
	}
	args, err := parseArgs(p)
	if err != nil {
		return nil, err
	}
	return &Extern{Sp: kw.Span.Cover(sel.Span), Selector: sel.Lexeme, Args: args}, nil
}

// ---------------------------------------------------------------------------
// Infix handlers
// ---------------------------------------------------------------------------

type binaryInfix struct {
	op    string
	prec  int
	right bool
}

func (b binaryInfix) Matches(tok kernel.Token) bool {
	return tok.Is(b.op) && tok.Role == kernel.RoleOperator
}

func (b binaryInfix) Precedence() int { return b.prec }

func (b binaryInfix) Parse(p *kernel.Parser, left kernel.Expr) (kernel.Expr, error) {
	p.Advance()
	next := b.prec + 1
	if b.right {
		next = b.prec
	}
	right, err := p.ParseExprPrec(next)
	if err != nil {
		return nil, err
	}
	return &Binary{
		Sp:    left.Span().Cover(right.Span()),
		Op:    b.op,
		Left:  left,
		Right: right,
	}, nil
}

// ---------------------------------------------------------------------------
// Statement handlers
// ---------------------------------------------------------------------------

type keywordStmt struct {
	keyword string
	parse   func(p *kernel.Parser) (kernel.Stmt, error)
}

func (k keywordStmt) Matches(p *kernel.Parser) bool {
	tok := p.Peek()
	return tok.Role == kernel.RoleKeyword && tok.Is(k.keyword)
}

func (k keywordStmt) Parse(p *kernel.Parser) (kernel.Stmt, error) {
	return k.parse(p)
}

type assignStmt struct{}

func (assignStmt) Matches(p *kernel.Parser) bool {
	return p.Peek().Role == kernel.RoleIdent && p.PeekN(1).Is("=")
}

func (assignStmt) Parse(p *kernel.Parser) (kernel.Stmt, error) {
	name := p.Advance()
	p.Advance() // "="
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return &Assign{Sp: name.Span.Cover(expr.Span()), Name: name.Lexeme, Expr: expr}, nil
}

// exprStmt is the fallback statement handler, registered last.
type exprStmt struct{}

func (exprStmt) Matches(p *kernel.Parser) bool {
	tok := p.Peek()
	return tok.Role != kernel.RoleEOF && tok.Role != kernel.RoleBlockEnd
}

func (exprStmt) Parse(p *kernel.Parser) (kernel.Stmt, error) {
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}

// ---------------------------------------------------------------------------
// Statement parse functions
// ---------------------------------------------------------------------------

func parseLet(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	name, err := p.ExpectRole(kernel.RoleIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.Expect("="); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return &Let{Sp: kw.Span.Cover(expr.Span()), Name: name.Lexeme, Expr: expr}, nil
}

func parseWhile(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(p)
	if err != nil {
		return nil, err
	}
	return &While{Sp: kw.Span, Cond: cond, Body: body}, nil
}

func parseIf(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	then, err := parseBlock(p)
	if err != nil {
		return nil, err
	}
	stmt := &If{Sp: kw.Span, Cond: cond, Then: then}

	p.SkipTerminators()
	if p.Match("else") {
		if p.Peek().Is("if") {
			els, err := parseIf(p)
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		} else {
			els, err := parseBlock(p)
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		}
	}
	return stmt, nil
}

func parseReturn(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	stmt := &Return{Sp: kw.Span}
	tok := p.Peek()
	if tok.Role != kernel.RoleTerminator && tok.Role != kernel.RoleEOF && !tok.Is("}") {
		expr, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Expr = expr
	}
	return stmt, nil
}

func parseBreak(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	return &Break{Sp: kw.Span}, nil
}

func parseContinue(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	return &Continue{Sp: kw.Span}, nil
}

func parsePrint(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Advance()
	args, err := parseArgs(p)
	if err != nil {
		return nil, err
	}
	return &Print{Sp: kw.Span, Args: args}, nil
}

// parseFn handles "fn name(params) { ... }" and "memo fn ..." for
// memoizable functions.
func parseFn(p *kernel.Parser) (kernel.Stmt, error) {
	kw := p.Peek()
	memo := p.Match("memo")
	if _, err := p.Expect("fn"); err != nil {
		return nil, err
	}
	name, err := p.ExpectRole(kernel.RoleIdent)
	if err != nil {
		return nil, err
	}

	if _, err := p.Expect("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.Match(")") {
		if len(params) > 0 {
			if _, err := p.Expect(","); err != nil {
				return nil, err
			}
		}
		param, err := p.ExpectRole(kernel.RoleIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Lexeme)
	}

	body, err := parseBlock(p)
	if err != nil {
		return nil, err
	}
	return &FnDef{Sp: kw.Span, Fn: &FuncValue{
		Name:    name.Lexeme,
		Params:  params,
		Body:    body,
		Memoize: memo,
	}}, nil
}

// ---------------------------------------------------------------------------
// Shared parsing helpers
// ---------------------------------------------------------------------------

func parseBlock(p *kernel.Parser) (*Block, error) {
	open, err := p.Expect("{")
	if err != nil {
		return nil, err
	}
	block := &Block{Sp: open.Span}
	p.SkipTerminators()
	for !p.Peek().Is("}") {
		if p.AtEOF() {
			return nil, p.Errorf("unterminated block, expected \"}\"")
		}
		stmt, err := p.ParseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
		p.SkipTerminators()
	}
	closing := p.Advance()
	block.Sp = block.Sp.Cover(closing.Span)
	return block, nil
}

func parseArgs(p *kernel.Parser) ([]kernel.Expr, error) {
	if _, err := p.Expect("("); err != nil {
		return nil, err
	}
	var args []kernel.Expr
	if p.Match(")") {
		return args, nil
	}
	for {
		arg, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.Match(")") {
			return args, nil
		}
		if _, err := p.Expect(","); err != nil {
			return nil, err
		}
	}
}
