// Package instr implements the canonical-instruction execution strategy: a
// closed set of tagged instructions compiled from declarative language
// schemas and executed by a single dispatch loop.
package instr

import (
	"fmt"

	"github.com/substrate-lang/substrate/kernel"
)

// Kind tags an instruction. The set is closed: no other executable
// primitive exists in this variant.
type Kind uint8

const (
	KindConst Kind = iota + 1
	KindLoad
	KindSequence
	KindScope
	KindBranch
	KindLoop
	KindAssign
	KindInvoke
	KindOperate
	KindTransfer
)

var kindNames = map[Kind]string{
	KindConst:    "const",
	KindLoad:     "load",
	KindSequence: "seq",
	KindScope:    "scope",
	KindBranch:   "branch",
	KindLoop:     "loop",
	KindAssign:   "assign",
	KindInvoke:   "invoke",
	KindOperate:  "operate",
	KindTransfer: "transfer",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// TransferKind distinguishes the three non-local transfers.
type TransferKind uint8

const (
	TransferReturn TransferKind = iota + 1
	TransferBreak
	TransferContinue
)

func (t TransferKind) String() string {
	switch t {
	case TransferReturn:
		return "return"
	case TransferBreak:
		return "break"
	case TransferContinue:
		return "continue"
	}
	return fmt.Sprintf("TransferKind(%d)", uint8(t))
}

// Instruction is one node of a canonical instruction tree. It is a tagged
// union flattened into a single struct so the tree serializes canonically;
// which fields are meaningful depends on Kind:
//
//	Const:    Role, Lexeme (literal token, materialized by the hooks)
//	Load:     Lexeme (variable name)
//	Sequence: Kids (in order)
//	Scope:    Kids[0] (body)
//	Branch:   Kids[0] condition, Kids[1] then, optional Kids[2] else
//	Loop:     Kids[0] condition, Kids[1] body
//	Assign:   Lexeme (name), Kids[0] (expression)
//	Invoke:   Lexeme (selector), Kids (arguments)
//	Operate:  Lexeme (operator), Kids (operands)
//	Transfer: Transfer kind, optional Kids[0] (carried value)
//
// Trees are built once per program and immutable during execution.
type Instruction struct {
	Kind     Kind           `cbor:"1,keyasint"`
	Span     kernel.Span    `cbor:"2,keyasint,omitempty"`
	Lexeme   string         `cbor:"3,keyasint,omitempty"`
	Role     kernel.Role    `cbor:"4,keyasint,omitempty"`
	Transfer TransferKind   `cbor:"5,keyasint,omitempty"`
	Kids     []*Instruction `cbor:"6,keyasint,omitempty"`
}

// Function is a user-defined function extracted at compile time.
type Function struct {
	Name   string       `cbor:"1,keyasint"`
	Params []string     `cbor:"2,keyasint,omitempty"`
	Body   *Instruction `cbor:"3,keyasint"`
}

// Program is one compiled program: its body plus the functions it defines.
type Program struct {
	Body  *Instruction         `cbor:"1,keyasint"`
	Funcs map[string]*Function `cbor:"2,keyasint,omitempty"`
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// Const builds a literal leaf from its source token.
func Const(role kernel.Role, lexeme string, span kernel.Span) *Instruction {
	return &Instruction{Kind: KindConst, Role: role, Lexeme: lexeme, Span: span}
}

// Load builds a variable reference.
func Load(name string, span kernel.Span) *Instruction {
	return &Instruction{Kind: KindLoad, Lexeme: name, Span: span}
}

// Seq builds an ordered sequence.
func Seq(kids ...*Instruction) *Instruction {
	return &Instruction{Kind: KindSequence, Kids: kids}
}

// Scope wraps a body in its own scope frame.
func Scope(body *Instruction) *Instruction {
	return &Instruction{Kind: KindScope, Kids: []*Instruction{body}, Span: body.Span}
}

// Branch builds a conditional; els may be nil.
func Branch(cond, then, els *Instruction) *Instruction {
	kids := []*Instruction{cond, then}
	if els != nil {
		kids = append(kids, els)
	}
	return &Instruction{Kind: KindBranch, Kids: kids, Span: cond.Span}
}

// Loop repeats body while cond holds.
func Loop(cond, body *Instruction) *Instruction {
	return &Instruction{Kind: KindLoop, Kids: []*Instruction{cond, body}, Span: cond.Span}
}

// Assign evaluates expr and stores it under name (flat scoping: an existing
// binding found by search is mutated).
func Assign(name string, expr *Instruction, span kernel.Span) *Instruction {
	return &Instruction{Kind: KindAssign, Lexeme: name, Kids: []*Instruction{expr}, Span: span}
}

// Invoke calls a user function or extern capability by selector.
func Invoke(selector string, span kernel.Span, args ...*Instruction) *Instruction {
	return &Instruction{Kind: KindInvoke, Lexeme: selector, Kids: args, Span: span}
}

// Operate applies a language operator to evaluated operands.
func Operate(op string, span kernel.Span, operands ...*Instruction) *Instruction {
	return &Instruction{Kind: KindOperate, Lexeme: op, Kids: operands, Span: span}
}

// TransferOf builds a Transfer; value may be nil.
func TransferOf(kind TransferKind, value *Instruction, span kernel.Span) *Instruction {
	in := &Instruction{Kind: KindTransfer, Transfer: kind, Span: span}
	if value != nil {
		in.Kids = []*Instruction{value}
	}
	return in
}

// ---------------------------------------------------------------------------
// Structural equality
// ---------------------------------------------------------------------------

// Equal reports structural equality of two instruction trees, ignoring
// spans. Used by the round-trip tests.
func Equal(a, b *Instruction) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Lexeme != b.Lexeme || a.Role != b.Role || a.Transfer != b.Transfer {
		return false
	}
	if len(a.Kids) != len(b.Kids) {
		return false
	}
	for i := range a.Kids {
		if !Equal(a.Kids[i], b.Kids[i]) {
			return false
		}
	}
	return true
}

// EqualPrograms reports structural equality of two compiled programs.
func EqualPrograms(a, b *Program) bool {
	if !Equal(a.Body, b.Body) {
		return false
	}
	if len(a.Funcs) != len(b.Funcs) {
		return false
	}
	for name, fa := range a.Funcs {
		fb, ok := b.Funcs[name]
		if !ok || len(fa.Params) != len(fb.Params) {
			return false
		}
		for i := range fa.Params {
			if fa.Params[i] != fb.Params[i] {
				return false
			}
		}
		if !Equal(fa.Body, fb.Body) {
			return false
		}
	}
	return true
}
