package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/substrate-lang/substrate/instr"
	"github.com/substrate-lang/substrate/kernel"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleProgram() *instr.Program {
	return &instr.Program{
		Body: instr.Seq(instr.Assign("x", instr.Const(kernel.RoleNumber, "1", kernel.Span{}), kernel.Span{})),
	}
}

func TestKeyIsStableAndSeparated(t *testing.T) {
	if Key("pico", "x = 1") != Key("pico", "x = 1") {
		t.Error("same input should produce the same key")
	}
	if Key("pico", "x = 1") == Key("slate", "x = 1") {
		t.Error("language should be part of the key")
	}
	// The separator keeps (ab, c) and (a, bc) distinct.
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("language/source boundary should be part of the key")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	prog := sampleProgram()
	key := Key("pico", "x = 1")

	if err := s.Put(key, "pico", prog); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if !instr.EqualPrograms(got, prog) {
		t.Errorf("Get returned a different program:\n%s", instr.Print(got))
	}
}

func TestPutTwiceIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	prog := sampleProgram()
	key := Key("pico", "x = 1")

	if err := s.Put(key, "pico", prog); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(key, "pico", prog); err != nil {
		t.Errorf("second Put of the same key should be a no-op, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(Key("pico", "never stored"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCompileMissThenHit(t *testing.T) {
	s := openTestStore(t)
	calls := 0
	compile := func(src string) (*instr.Program, error) {
		calls++
		return sampleProgram(), nil
	}

	prog, cached, err := s.Compile("pico", "x = 1", compile)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("first Compile should be a miss")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	again, cached, err := s.Compile("pico", "x = 1", compile)
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("second Compile should be a hit")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 after a cache hit", calls)
	}
	if !instr.EqualPrograms(again, prog) {
		t.Error("cached program should match the compiled one")
	}
}

func TestCompileErrorNotCached(t *testing.T) {
	s := openTestStore(t)
	boom := errors.New("boom")
	_, _, err := s.Compile("pico", "broken", func(string) (*instr.Program, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, err := s.Get(Key("pico", "broken")); !errors.Is(err, ErrNotFound) {
		t.Error("failed compiles should not be cached")
	}
}

func TestRecordRun(t *testing.T) {
	s := openTestStore(t)
	key := Key("pico", "x = 1")
	if err := s.Put(key, "pico", sampleProgram()); err != nil {
		t.Fatal(err)
	}

	first, err := s.RecordRun(key)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.RecordRun(key)
	if err != nil {
		t.Fatal(err)
	}
	if first == "" || second == "" {
		t.Error("run IDs should be non-empty")
	}
	if first == second {
		t.Error("each run should get a fresh ID")
	}
}
