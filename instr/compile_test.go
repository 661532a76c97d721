package instr

import (
	"errors"
	"testing"

	"github.com/substrate-lang/substrate/kernel"
	"github.com/substrate-lang/substrate/schema"
)

// testLang is an indent-structured fixture language covering every canonical
// action.
func testLang() *schema.Language {
	return &schema.Language{
		Name:       "testlang",
		BlockStyle: "indent",

		Skip:        []string{" ", "\t", "\r"},
		Delimiters:  []string{"(", ")", ","},
		LineComment: "#",
		StringQuote: `"`,
		BlockOpen:   ":",
		Assign:      "=",

		Literals: []string{"true", "false", "null"},

		Binary: []schema.Operator{
			{Lexeme: "or", Precedence: 10},
			{Lexeme: "and", Precedence: 20},
			{Lexeme: "==", Precedence: 30},
			{Lexeme: "!=", Precedence: 30},
			{Lexeme: "<", Precedence: 40},
			{Lexeme: ">", Precedence: 40},
			{Lexeme: "+", Precedence: 50},
			{Lexeme: "-", Precedence: 50},
			{Lexeme: "*", Precedence: 60},
			{Lexeme: "/", Precedence: 60},
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

func compileFixture(t *testing.T, src string) *Program {
	t.Helper()
	c, err := NewCompiler(testLang())
	if err != nil {
		t.Fatal(err)
	}
	prog, err := c.Compile(src)
	if err != nil {
		t.Fatalf("Compile:\n%s\n%v", src, err)
	}
	return prog
}

func num(lexeme string) *Instruction {
	return Const(kernel.RoleNumber, lexeme, kernel.Span{})
}

func TestCompileAssign(t *testing.T) {
	prog := compileFixture(t, "x = 1\n")

	want := Seq(Assign("x", num("1"), kernel.Span{}))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

func TestCompilePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want *Instruction
	}{
		{
			"x = 1 + 2 * 3\n",
			Assign("x", Operate("+", kernel.Span{},
				num("1"),
				Operate("*", kernel.Span{}, num("2"), num("3"))), kernel.Span{}),
		},
		{
			"x = (1 + 2) * 3\n",
			Assign("x", Operate("*", kernel.Span{},
				Operate("+", kernel.Span{}, num("1"), num("2")),
				num("3")), kernel.Span{}),
		},
		{
			"x = 2 ** 3 ** 2\n",
			Assign("x", Operate("**", kernel.Span{},
				num("2"),
				Operate("**", kernel.Span{}, num("3"), num("2"))), kernel.Span{}),
		},
		{
			// One lexeme, unary and binary: operand count disambiguates.
			"x = -1 - 2\n",
			Assign("x", Operate("-", kernel.Span{},
				Operate("-", kernel.Span{}, num("1")),
				num("2")), kernel.Span{}),
		},
	}
	for _, tt := range tests {
		prog := compileFixture(t, tt.src)
		want := Seq(tt.want)
		if !Equal(prog.Body, want) {
			t.Errorf("compile(%q):\n%swant:\n%s", tt.src, PrintInstruction(prog.Body), PrintInstruction(want))
		}
	}
}

func TestCompileLoopWithTransfers(t *testing.T) {
	src := "while x < 3:\n" +
		"    if x == 2:\n" +
		"        break\n" +
		"    x = x + 1\n"
	prog := compileFixture(t, src)

	want := Seq(Loop(
		Operate("<", kernel.Span{}, Load("x", kernel.Span{}), num("3")),
		Scope(Seq(
			Branch(
				Operate("==", kernel.Span{}, Load("x", kernel.Span{}), num("2")),
				Scope(Seq(TransferOf(TransferBreak, nil, kernel.Span{}))),
				nil,
			),
			Assign("x", Operate("+", kernel.Span{}, Load("x", kernel.Span{}), num("1")), kernel.Span{}),
		)),
	))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

func TestCompileBranchElseChain(t *testing.T) {
	src := "if a:\n" +
		"    x = 1\n" +
		"else if b:\n" +
		"    x = 2\n" +
		"else:\n" +
		"    x = 3\n"
	prog := compileFixture(t, src)

	want := Seq(Branch(
		Load("a", kernel.Span{}),
		Scope(Seq(Assign("x", num("1"), kernel.Span{}))),
		Branch(
			Load("b", kernel.Span{}),
			Scope(Seq(Assign("x", num("2"), kernel.Span{}))),
			Scope(Seq(Assign("x", num("3"), kernel.Span{}))),
		),
	))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

// braceLang is a brace-structured fixture with newline terminators.
func braceLang() *schema.Language {
	return &schema.Language{
		Name:       "bracelang",
		BlockStyle: "braces",

		Skip:        []string{" ", "\t", "\r"},
		Terminators: []string{"\n", ";"},
		Delimiters:  []string{"(", ")", ","},
		StringQuote: `"`,
		BlockOpen:   "{",
		BlockClose:  "}",
		Assign:      "=",

		Literals: []string{"true", "false"},

		Binary: []schema.Operator{
			{Lexeme: "==", Precedence: 30},
			{Lexeme: "+", Precedence: 50},
		},

		Statements: []schema.Statement{
			{Keyword: "if", Elements: []string{"expr", "block"}, Action: schema.ActionBranch, Else: "else"},
			{Keyword: "print", Elements: []string{"expr"}, Action: schema.ActionInvoke, Selector: "console:println"},
		},
	}
}

func TestCompileBraceElseAfterNewline(t *testing.T) {
	// The else clause may start on the line after the closing brace.
	src := "if x == 1 {\n" +
		"    print 1\n" +
		"}\n" +
		"else {\n" +
		"    print 2\n" +
		"}\n"
	c, err := NewCompiler(braceLang())
	if err != nil {
		t.Fatal(err)
	}
	prog, err := c.Compile(src)
	if err != nil {
		t.Fatalf("Compile:\n%s\n%v", src, err)
	}

	want := Seq(Branch(
		Operate("==", kernel.Span{}, Load("x", kernel.Span{}), num("1")),
		Scope(Seq(Invoke("console:println", kernel.Span{}, num("1")))),
		Scope(Seq(Invoke("console:println", kernel.Span{}, num("2")))),
	))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

func TestCompileFunctions(t *testing.T) {
	src := "def add(a, b):\n" +
		"    return a + b\n" +
		"x = add(1, 2)\n"
	prog := compileFixture(t, src)

	fn, ok := prog.Funcs["add"]
	if !ok {
		t.Fatal("function add not extracted")
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Errorf("params = %v, want [a b]", fn.Params)
	}

	wantBody := Scope(Seq(TransferOf(TransferReturn,
		Operate("+", kernel.Span{}, Load("a", kernel.Span{}), Load("b", kernel.Span{})),
		kernel.Span{})))
	if !Equal(fn.Body, wantBody) {
		t.Errorf("body:\n%swant:\n%s", PrintInstruction(fn.Body), PrintInstruction(wantBody))
	}

	want := Seq(Assign("x", Invoke("add", kernel.Span{}, num("1"), num("2")), kernel.Span{}))
	if !Equal(prog.Body, want) {
		t.Errorf("program body:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

func TestCompileDuplicateFunction(t *testing.T) {
	src := "def f():\n    pass\ndef f():\n    pass\n"
	c, err := NewCompiler(testLang())
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Compile(src)

	var parseErr *kernel.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestCompileExtern(t *testing.T) {
	prog := compileFixture(t, `x = extern "math:pow"(2, 8)`+"\n")

	want := Seq(Assign("x",
		Invoke("math:pow", kernel.Span{}, num("2"), num("8")),
		kernel.Span{}))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

func TestCompileExternStatement(t *testing.T) {
	prog := compileFixture(t, `extern "console:println"(1)`+"\n")

	want := Seq(Invoke("console:println", kernel.Span{}, num("1")))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}

func TestCompileBareReturn(t *testing.T) {
	src := "def f():\n    return\n"
	prog := compileFixture(t, src)

	wantBody := Scope(Seq(TransferOf(TransferReturn, nil, kernel.Span{})))
	if !Equal(prog.Funcs["f"].Body, wantBody) {
		t.Errorf("body:\n%swant:\n%s", PrintInstruction(prog.Funcs["f"].Body), PrintInstruction(wantBody))
	}
}

func TestCompilePrintDesugarsToInvoke(t *testing.T) {
	prog := compileFixture(t, "print 42\n")

	want := Seq(Invoke("console:println", kernel.Span{}, num("42")))
	if !Equal(prog.Body, want) {
		t.Errorf("compiled:\n%swant:\n%s", PrintInstruction(prog.Body), PrintInstruction(want))
	}
}
