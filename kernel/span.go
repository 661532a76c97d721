package kernel

import "fmt"

// ---------------------------------------------------------------------------
// Source spans: byte-offset coordinates, authoritative for all kernel logic
// ---------------------------------------------------------------------------

// Span is a half-open byte range [Start, End) into the source text.
//
// Spans are the canonical coordinate system for the kernel: lexing, parsing
// and execution all carry spans. Line/column pairs are derived on demand for
// diagnostics only and never drive control decisions.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Position is a human-readable source location, 1-based.
// Diagnostic only; derived from a Span via PositionAt.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionAt converts a byte offset into a line/column position by scanning
// the source. Offsets past the end of source report the final position.
func PositionAt(source string, offset int) Position {
	line, col := 1, 1
	if offset > len(source) {
		offset = len(source)
	}
	for _, b := range []byte(source[:offset]) {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Line: line, Column: col}
}
