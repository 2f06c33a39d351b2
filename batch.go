package mplwgpu

// Flat command structs mirroring the draw-callback surface of the native
// plotting binding. A binding invokes each Append* operation once per
// frame with a flat array; the structs deliberately avoid nesting so they
// can be filled from foreign memory without per-element translation.

// RectCommand describes one rectangle.
type RectCommand struct {
	X, Y, W, H   float32
	R, G, B, A   float32
	StrokeWidth  float32
	CornerRadius float32
	Z            float32
}

// LineCommand describes one line segment.
type LineCommand struct {
	X1, Y1, Z1 float32
	X2, Y2, Z2 float32
	R, G, B, A float32
	Width      float32
	DashLen    float32
	GapLen     float32
	DashOffset float32
}

// CircleCommand describes one circle or marker. Kind below zero draws a
// plain circle; otherwise it selects the MarkerKind.
type CircleCommand struct {
	CX, CY, CZ  float32
	Radius      float32
	R, G, B, A  float32
	StrokeWidth float32
	Kind        int32
}

// TriangleCommand describes one filled triangle.
type TriangleCommand struct {
	P0, P1, P2 [3]float32
	R, G, B, A float32
	Lit        bool
}

// TextCommand describes one text run.
type TextCommand struct {
	Text       string
	X, Y       float32
	Size       float32
	R, G, B, A float32
}

// AppendRects appends a batch of rectangles in order.
func (s *Scene) AppendRects(cmds []RectCommand) {
	for i := range cmds {
		c := &cmds[i]
		s.Rect(c.X, c.Y, c.W, c.H, RGBA(c.R, c.G, c.B, c.A), c.CornerRadius, c.StrokeWidth, c.Z)
	}
}

// AppendLines appends a batch of line segments in order.
func (s *Scene) AppendLines(cmds []LineCommand) {
	for i := range cmds {
		c := &cmds[i]
		s.Line(c.X1, c.Y1, c.Z1, c.X2, c.Y2, c.Z2, c.Width,
			RGBA(c.R, c.G, c.B, c.A), c.DashLen, c.GapLen, c.DashOffset)
	}
}

// AppendCircles appends a batch of circles and markers in order.
func (s *Scene) AppendCircles(cmds []CircleCommand) {
	for i := range cmds {
		c := &cmds[i]
		color := RGBA(c.R, c.G, c.B, c.A)
		if c.Kind < 0 {
			s.Circle(c.CX, c.CY, c.CZ, c.Radius, color, c.StrokeWidth)
			continue
		}
		s.Marker(c.CX, c.CY, c.CZ, c.Radius, color, MarkerKind(c.Kind))
	}
}

// AppendTriangles appends a batch of triangles in order.
func (s *Scene) AppendTriangles(cmds []TriangleCommand) {
	for i := range cmds {
		c := &cmds[i]
		s.Triangle(c.P0, c.P1, c.P2, RGBA(c.R, c.G, c.B, c.A), c.Lit)
	}
}

// AppendTexts queues a batch of text runs in order.
func (s *Scene) AppendTexts(cmds []TextCommand) {
	for i := range cmds {
		c := &cmds[i]
		s.Text(c.Text, c.X, c.Y, c.Size, RGBA(c.R, c.G, c.B, c.A))
	}
}
