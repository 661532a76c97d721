package kernel

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Lexing tests
// ---------------------------------------------------------------------------

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.RegisterAll(RoleSkip, " ", "\t", "\r"); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterAll(RoleTerminator, "\n", ";"); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterAll(RoleDelimiter, "(", ")", ","); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterBinary("<", 40, AssocLeft); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterBinary("<=", 40, AssocLeft); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterBinary("+", 50, AssocLeft); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("if", RoleKeyword); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("=", RoleOperator); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetFallback(Fallback{
		Idents:      true,
		Numbers:     true,
		StringQuote: '"',
		LineComment: "//",
	}); err != nil {
		t.Fatal(err)
	}
	return reg
}

func lex(t *testing.T, reg *Registry, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src, reg).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return toks
}

func lexemes(toks []Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Role == RoleEOF {
			break
		}
		out = append(out, tok.Lexeme)
	}
	return out
}

func TestLongestLexemeWins(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, "a <= b")

	got := lexemes(toks)
	want := []string{"a", "<=", "b"}
	if len(got) != len(want) {
		t.Fatalf("lexemes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lexeme[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if toks[1].Role != RoleOperator {
		t.Errorf("<= role = %v, want operator", toks[1].Role)
	}
}

func TestKeywordNeedsWordBoundary(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, "iffy")

	if len(toks) != 2 || toks[0].Lexeme != "iffy" {
		t.Fatalf("lexemes = %v, want [iffy]", lexemes(toks))
	}
	if toks[0].Role != RoleIdent {
		t.Errorf("iffy role = %v, want identifier", toks[0].Role)
	}
}

func TestSkipLexemesNeverEmitted(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, "  a \t b  ")

	got := lexemes(toks)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("lexemes = %v, want [a b]", got)
	}
}

func TestSpansAreByteOffsets(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, "ab + cd")

	if toks[0].Span != (Span{Start: 0, End: 2}) {
		t.Errorf("ab span = %+v, want {0 2}", toks[0].Span)
	}
	if toks[1].Span != (Span{Start: 3, End: 4}) {
		t.Errorf("+ span = %+v, want {3 4}", toks[1].Span)
	}
	if toks[2].Span != (Span{Start: 5, End: 7}) {
		t.Errorf("cd span = %+v, want {5 7}", toks[2].Span)
	}
}

func TestNumberLiterals(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		src  string
		want []string
	}{
		{"42", []string{"42"}},
		{"3.14", []string{"3.14"}},
		// A trailing dot is not part of the number.
		{"1.foo", []string{"1", ".foo"}},
	}
	for _, tt := range tests {
		toks, err := NewLexer(tt.src, reg).Tokenize()
		if tt.src == "1.foo" {
			// "." is unregistered, so this position cannot lex.
			if err == nil {
				t.Errorf("Tokenize(%q): expected error for bare dot", tt.src)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tt.src, err)
		}
		if toks[0].Lexeme != tt.want[0] || toks[0].Role != RoleNumber {
			t.Errorf("Tokenize(%q) = %q (%v), want number %q", tt.src, toks[0].Lexeme, toks[0].Role, tt.want[0])
		}
	}
}

func TestStringLiteral(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, `"hi\nthere"`)

	if toks[0].Role != RoleString {
		t.Fatalf("role = %v, want string", toks[0].Role)
	}
	if toks[0].Lexeme != "hi\nthere" {
		t.Errorf("lexeme = %q, want %q", toks[0].Lexeme, "hi\nthere")
	}
	// The span covers the quotes in the source text.
	if toks[0].Span != (Span{Start: 0, End: 11}) {
		t.Errorf("span = %+v, want {0 11}", toks[0].Span)
	}
}

func TestStringTokenNeverMatchesLexeme(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, `"if"`)

	if toks[0].Role != RoleString {
		t.Fatalf("role = %v, want string", toks[0].Role)
	}
	if toks[0].Is("if") {
		t.Error("string content must not match keyword lexemes")
	}
}

func TestUnterminatedString(t *testing.T) {
	reg := testRegistry(t)
	_, err := NewLexer(`"oops`, reg).Tokenize()

	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("error = %v, want LexError", err)
	}
}

func TestLineComment(t *testing.T) {
	reg := testRegistry(t)
	toks := lex(t, reg, "a // rest is ignored\nb")

	got := lexemes(toks)
	want := []string{"a", "\n", "b"}
	if len(got) != len(want) {
		t.Fatalf("lexemes = %v, want %v", got, want)
	}
}

func TestNoLexemeMatches(t *testing.T) {
	reg := testRegistry(t)
	_, err := NewLexer("a @ b", reg).Tokenize()

	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("error = %v, want LexError", err)
	}
	if lexErr.Span.Start != 2 {
		t.Errorf("error span start = %d, want 2", lexErr.Span.Start)
	}
}

func TestEOFAlwaysAppended(t *testing.T) {
	reg := testRegistry(t)

	for _, src := range []string{"", "a", "  "} {
		toks := lex(t, reg, src)
		if len(toks) == 0 || toks[len(toks)-1].Role != RoleEOF {
			t.Errorf("Tokenize(%q): missing EOF token", src)
		}
	}
}
