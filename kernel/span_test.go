package kernel

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{Start: 2, End: 5}
	b := Span{Start: 8, End: 12}

	got := a.Cover(b)
	if got != (Span{Start: 2, End: 12}) {
		t.Errorf("Cover = %+v, want {2 12}", got)
	}
	if b.Cover(a) != got {
		t.Error("Cover should be order-independent")
	}
}

func TestPositionAt(t *testing.T) {
	src := "ab\ncd\n\nef"

	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tt := range tests {
		pos := PositionAt(src, tt.offset)
		if pos.Line != tt.line || pos.Column != tt.col {
			t.Errorf("PositionAt(%d) = %v, want %d:%d", tt.offset, pos, tt.line, tt.col)
		}
	}
}
