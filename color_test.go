package mplwgpu

import "testing"

func TestRGBIsOpaque(t *testing.T) {
	c := RGB(0.1, 0.2, 0.3)
	if c.A != 1 {
		t.Errorf("alpha = %v, want 1", c.A)
	}
}

func TestWithAlpha(t *testing.T) {
	c := Red.WithAlpha(0.25)
	if c.A != 0.25 {
		t.Errorf("alpha = %v, want 0.25", c.A)
	}
	if c.R != Red.R || c.G != Red.G || c.B != Red.B {
		t.Error("WithAlpha changed the RGB channels")
	}
	if Red.A != 1 {
		t.Error("WithAlpha mutated the receiver")
	}
}

func TestLerp(t *testing.T) {
	a := RGB(0, 0, 0)
	b := RGB(1, 1, 1)
	if got := Lerp(a, b, 0); got != a {
		t.Errorf("t=0 -> %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("t=1 -> %v, want %v", got, b)
	}
	mid := Lerp(a, b, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 {
		t.Errorf("t=0.5 -> %v", mid)
	}
	// Clamped outside [0, 1].
	if got := Lerp(a, b, -1); got != a {
		t.Errorf("t=-1 -> %v, want clamp to %v", got, a)
	}
	if got := Lerp(a, b, 2); got != b {
		t.Errorf("t=2 -> %v, want clamp to %v", got, b)
	}
}
