package kernel

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Structural normalization tests
// ---------------------------------------------------------------------------

func roles(toks []Token) []Role {
	out := make([]Role, len(toks))
	for i, tok := range toks {
		out[i] = tok.Role
	}
	return out
}

func indentFixture(t *testing.T, src string) []Token {
	t.Helper()
	reg := NewRegistry()
	if err := reg.RegisterAll(RoleSkip, " ", "\t", "\n"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(":", RoleDelimiter); err != nil {
		t.Fatal(err)
	}
	toks, err := NewLexer(src, reg).Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	out, err := IndentBlocks(toks, src)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestIndentBlocksFlat(t *testing.T) {
	out := indentFixture(t, "a\nb\n")

	want := []Role{RoleIdent, RoleTerminator, RoleIdent, RoleTerminator, RoleEOF}
	got := roles(out)
	if len(got) != len(want) {
		t.Fatalf("roles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("role[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIndentBlocksNesting(t *testing.T) {
	src := "a:\n  b\n  c:\n    d\ne\n"
	out := indentFixture(t, src)

	want := []Role{
		RoleIdent, RoleDelimiter, // a:
		RoleTerminator, RoleBlockStart, RoleIdent, // b
		RoleTerminator, RoleIdent, RoleDelimiter, // c:
		RoleTerminator, RoleBlockStart, RoleIdent, // d
		RoleTerminator, RoleBlockEnd, RoleBlockEnd, RoleIdent, // e
		RoleTerminator, RoleEOF,
	}
	got := roles(out)
	if len(got) != len(want) {
		t.Fatalf("roles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("role[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIndentBlocksClosesAtEOF(t *testing.T) {
	out := indentFixture(t, "a:\n  b")

	ends := 0
	for _, tok := range out {
		if tok.Role == RoleBlockEnd {
			ends++
		}
	}
	if ends != 1 {
		t.Errorf("open blocks at EOF = %d, want 1 BlockEnd", ends)
	}
	if out[len(out)-1].Role != RoleEOF {
		t.Error("stream must end with EOF")
	}
}

func TestIndentBlocksInconsistentDedent(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterAll(RoleSkip, " ", "\n"); err != nil {
		t.Fatal(err)
	}
	src := "a\n    b\n  c\n"
	toks, err := NewLexer(src, reg).Tokenize()
	if err != nil {
		t.Fatal(err)
	}

	_, err = IndentBlocks(toks, src)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestBraceDelimsBalanced(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterAll(RoleSkip, " "); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterAll(RoleDelimiter, "{", "}", "(", ")"); err != nil {
		t.Fatal(err)
	}
	norm := BraceDelims(map[string]string{"{": "}", "(": ")"})

	src := "{ ( a ) }"
	toks, err := NewLexer(src, reg).Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	out, err := norm(toks, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(toks) {
		t.Error("balanced stream should pass through unchanged")
	}
}

func TestBraceDelimsErrors(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterAll(RoleSkip, " "); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterAll(RoleDelimiter, "{", "}", "(", ")"); err != nil {
		t.Fatal(err)
	}
	norm := BraceDelims(map[string]string{"{": "}", "(": ")"})

	tests := []string{
		"{ a",   // unclosed
		"a }",   // unmatched
		"{ ( }", // mismatched
	}
	for _, src := range tests {
		toks, err := NewLexer(src, reg).Tokenize()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := norm(toks, src); err == nil {
			t.Errorf("BraceDelims(%q): expected error", src)
		}
	}
}
