package mplwgpu

// Color is a straight (non-premultiplied) RGBA color with components in
// the 0-1 range. Colors are uploaded to the GPU as-is; blending against
// already-resolved geometry happens in the fragment stage.
type Color struct {
	R, G, B, A float32
}

// RGB creates an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color with explicit alpha.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// WithAlpha returns the color with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// vec4 returns the color as a shader-ready quadruplet.
func (c Color) vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Common plot colors.
var (
	Black = RGB(0, 0, 0)
	White = RGB(1, 1, 1)
	Red   = RGB(0.84, 0.15, 0.16)
	Green = RGB(0.17, 0.63, 0.17)
	Blue  = RGB(0.12, 0.47, 0.71)
	Gray  = RGB(0.5, 0.5, 0.5)
)

// Lerp linearly interpolates between two colors. t is clamped to [0, 1].
func Lerp(a, b Color, t float32) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
