package instr

import (
	"bytes"
	"strings"
	"testing"
)

func TestWireRoundTrip(t *testing.T) {
	src := "def add(a, b):\n" +
		"    return a + b\n" +
		"i = 0\n" +
		"while i < 3:\n" +
		"    print add(i, 1)\n" +
		"    i = i + 1\n"
	prog := compileFixture(t, src)

	data, err := Marshal(prog)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if !EqualPrograms(prog, back) {
		t.Errorf("round trip changed the program:\n%s\nvs\n%s", Print(prog), Print(back))
	}
}

func TestWireDeterministic(t *testing.T) {
	prog := compileFixture(t, "def f(x):\n    return x\ndef g(y):\n    return y\nz = f(g(1))\n")

	a, err := Marshal(prog)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(prog)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding should be byte-stable")
	}
}

func TestUnmarshalRejectsEmptyBody(t *testing.T) {
	if _, err := Unmarshal([]byte{0xa0}); err == nil { // empty CBOR map
		t.Error("program without a body should be rejected")
	}
}

func TestPrintStable(t *testing.T) {
	src := "def b():\n    pass\ndef a():\n    pass\nx = 1\n"
	prog := compileFixture(t, src)

	out := Print(prog)
	if out != Print(prog) {
		t.Fatal("Print should be deterministic")
	}
	// Functions render sorted by name.
	if ai, bi := strings.Index(out, "(func a"), strings.Index(out, "(func b"); ai < 0 || bi < 0 || ai > bi {
		t.Errorf("functions not sorted in output:\n%s", out)
	}
}
