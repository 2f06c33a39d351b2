package text

import (
	"testing"

	"github.com/go-text/typesetting/di"
)

func TestDefaultFace(t *testing.T) {
	face, err := DefaultFace()
	if err != nil {
		t.Fatalf("DefaultFace: %v", err)
	}
	if face == nil {
		t.Fatal("DefaultFace returned nil face")
	}

	again, err := DefaultFace()
	if err != nil {
		t.Fatalf("DefaultFace second call: %v", err)
	}
	if face != again {
		t.Error("DefaultFace should return the shared face")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a font")); err == nil {
		t.Error("Parse accepted invalid font data")
	}
}

func TestShapeBasic(t *testing.T) {
	face, err := DefaultFace()
	if err != nil {
		t.Fatalf("DefaultFace: %v", err)
	}

	glyphs, m := Shape(face, "Hello", 16)
	if len(glyphs) != 5 {
		t.Fatalf("glyph count = %d, want 5", len(glyphs))
	}
	if m.Width <= 0 {
		t.Errorf("width = %v, want > 0", m.Width)
	}
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Errorf("metrics ascent=%v descent=%v, want both > 0", m.Ascent, m.Descent)
	}

	// Pen positions must be monotonically non-decreasing in LTR text.
	for i := 1; i < len(glyphs); i++ {
		if glyphs[i].X < glyphs[i-1].X {
			t.Errorf("glyph %d at x=%v before glyph %d at x=%v", i, glyphs[i].X, i-1, glyphs[i-1].X)
		}
	}
}

func TestShapeEmpty(t *testing.T) {
	face, err := DefaultFace()
	if err != nil {
		t.Fatalf("DefaultFace: %v", err)
	}

	tests := []struct {
		name string
		face *Face
		s    string
		size float32
	}{
		{"empty string", face, "", 16},
		{"nil face", nil, "x", 16},
		{"zero size", face, "x", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glyphs, m := Shape(tt.face, tt.s, tt.size)
			if len(glyphs) != 0 || m.Width != 0 {
				t.Errorf("got %d glyphs, width %v, want none", len(glyphs), m.Width)
			}
		})
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	face, err := DefaultFace()
	if err != nil {
		t.Fatalf("DefaultFace: %v", err)
	}

	w12, h12 := Measure(face, "measure me", 12)
	w24, h24 := Measure(face, "measure me", 24)
	if w24 <= w12 {
		t.Errorf("width did not grow with size: %v -> %v", w12, w24)
	}
	if h24 <= h12 {
		t.Errorf("height did not grow with size: %v -> %v", h12, h24)
	}
}

func TestBaseDirection(t *testing.T) {
	tests := []struct {
		s    string
		want di.Direction
	}{
		{"plain latin", di.DirectionLTR},
		{"123", di.DirectionLTR},
		{"שלום", di.DirectionRTL},
		{"", di.DirectionLTR},
		{"   ", di.DirectionLTR},
		{"\n", di.DirectionLTR},
	}
	for _, tt := range tests {
		if got := baseDirection(tt.s); got != tt.want {
			t.Errorf("baseDirection(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
