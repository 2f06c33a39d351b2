package mplwgpu

import "sync"

// TextRun is one queued text draw. Text is accumulated separately from
// primitives and resolved by the text pipeline during the same prepare
// phase. Position is the baseline origin in pixel coordinates.
type TextRun struct {
	Text  string
	X, Y  float32
	Size  float32
	Color Color
}

// Scene is the per-frame batch accumulator: an ordered sequence of
// Instance records plus a queue of text runs. Appends are ordered and
// order is preserved within each draw class, so later primitives paint
// over earlier ones.
//
// A Scene is append-only within a frame. Clear must be called before
// refilling the next frame's content; capturing without clearing
// re-renders the previous content plus any new appends, which makes
// incremental drawing across captures an explicit part of the contract.
type Scene struct {
	mu        sync.Mutex
	instances []Instance
	texts     []TextRun

	// Camera override for 3D content. When unset the render target
	// supplies its default screen-space orthographic camera.
	viewProj  Mat4
	cameraPos [3]float32
	hasCamera bool
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Clear empties the primitive and text accumulators and removes any
// camera override.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = s.instances[:0]
	s.texts = s.texts[:0]
	s.hasCamera = false
}

// Append pushes a pre-built instance record.
func (s *Scene) Append(in Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = append(s.instances, in)
}

// Rect appends an axis-aligned rectangle with origin (x, y), optional
// rounded corners, and an optional stroke ring. strokeWidth zero fills
// the rectangle.
func (s *Scene) Rect(x, y, w, h float32, color Color, cornerRadius, strokeWidth, z float32) {
	s.Append(Instance{
		AnchorA: [4]float32{x, y, z, cornerRadius},
		AnchorB: [4]float32{w, h, 0, strokeWidth},
		Color:   color.vec4(),
		Params:  [4]float32{PrimRect, 0, 0, 0},
	})
}

// Circle appends a circle of the given radius. strokeWidth zero fills it.
func (s *Scene) Circle(cx, cy, cz, radius float32, color Color, strokeWidth float32) {
	s.Append(Instance{
		AnchorA: [4]float32{cx, cy, cz, radius},
		AnchorB: [4]float32{radius, 0, 0, strokeWidth},
		Color:   color.vec4(),
		Params:  [4]float32{PrimCircle, 0, 0, 0},
	})
}

// Oval appends an axis-aligned ellipse with the given half-extents.
func (s *Scene) Oval(cx, cy, rx, ry float32, color Color, strokeWidth float32) {
	s.Append(Instance{
		AnchorA: [4]float32{cx, cy, 0, rx},
		AnchorB: [4]float32{ry, 0, 0, strokeWidth},
		Color:   color.vec4(),
		Params:  [4]float32{PrimCircle, 0, 0, 0},
	})
}

// Marker appends a scatter marker of the given kind and radius.
func (s *Scene) Marker(cx, cy, cz, radius float32, color Color, kind MarkerKind) {
	s.Append(Instance{
		AnchorA: [4]float32{cx, cy, cz, radius},
		AnchorB: [4]float32{radius, 0, 0, 0},
		Color:   color.vec4(),
		Params:  [4]float32{kind.Tag(), 0, 0, 0},
	})
}

// Line appends a line segment. The dash pattern is measured in pixels
// along the segment; dashLen zero draws a solid line.
func (s *Scene) Line(x1, y1, z1, x2, y2, z2, thickness float32, color Color, dashLen, gapLen, dashOffset float32) {
	s.Append(Instance{
		AnchorA: [4]float32{x1, y1, z1, thickness * 0.5},
		AnchorB: [4]float32{x2, y2, z2, 0},
		Color:   color.vec4(),
		Params:  [4]float32{PrimLine, dashLen, gapLen, dashOffset},
	})
}

// Triangle appends a filled triangle. Lit triangles receive a simple
// diffuse shading term in the fragment stage; unlit triangles (walls,
// backgrounds) are flat-colored.
func (s *Scene) Triangle(p0, p1, p2 [3]float32, color Color, lit bool) {
	tag := PrimTriangleUnlit
	if lit {
		tag = PrimTriangleLit
	}
	s.Append(Instance{
		AnchorA: [4]float32{p0[0], p0[1], p0[2], 0},
		AnchorB: [4]float32{p1[0], p1[1], p1[2], 0},
		AnchorC: [4]float32{p2[0], p2[1], p2[2], 0},
		Color:   color.vec4(),
		Params:  [4]float32{tag, 0, 0, 0},
	})
}

// Text queues a text run for the text pipeline.
func (s *Scene) Text(text string, x, y, size float32, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, TextRun{Text: text, X: x, Y: y, Size: size, Color: color})
}

// SetCamera overrides the default screen-space camera, for 3D content.
// viewProj must map world coordinates to clip space; cameraPos feeds the
// lighting term of lit triangles.
func (s *Scene) SetCamera(viewProj Mat4, cameraPos [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewProj = viewProj
	s.cameraPos = cameraPos
	s.hasCamera = true
}

// Camera returns the camera override, if any.
func (s *Scene) Camera() (viewProj Mat4, cameraPos [3]float32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewProj, s.cameraPos, s.hasCamera
}

// Instances returns a copy of the accumulated instance records. The copy
// keeps the renderer free to sort its batch without mutating the scene.
func (s *Scene) Instances() []Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Texts returns a copy of the queued text runs.
func (s *Scene) Texts() []TextRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TextRun, len(s.texts))
	copy(out, s.texts)
	return out
}

// Len returns the number of accumulated primitive instances.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}
