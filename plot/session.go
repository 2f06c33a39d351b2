package plot

import (
	mplwgpu "github.com/KlingelDev/mpl-wgpu"
	"github.com/KlingelDev/mpl-wgpu/render"
)

// Session couples a headless renderer with a reusable scene, rendering
// one chart per capture. It is the entry point the golden-image tooling
// uses.
type Session struct {
	renderer *render.Headless
	scene    *mplwgpu.Scene
}

// NewSession acquires a GPU renderer at the given canvas size.
func NewSession(width, height uint32) (*Session, error) {
	r, err := render.NewHeadless(render.DefaultConfig(width, height))
	if err != nil {
		return nil, err
	}
	return &Session{renderer: r, scene: mplwgpu.NewScene()}, nil
}

// NewSessionWith wraps an existing renderer. Close releases the renderer
// either way.
func NewSessionWith(r *render.Headless) *Session {
	return &Session{renderer: r, scene: mplwgpu.NewScene()}
}

// Renderer exposes the underlying headless renderer.
func (s *Session) Renderer() *render.Headless { return s.renderer }

// Render clears the scene, runs the setup on a fresh plot, and captures
// the result as a tight RGBA buffer.
func (s *Session) Render(setup func(p *Plot)) ([]byte, error) {
	s.scene.Clear()
	w, h := s.renderer.Size()
	p := New(s.scene, s.renderer.Face(), float32(w), float32(h))
	setup(p)
	return s.renderer.Capture(s.scene)
}

// RenderCase renders a registry case by name.
func (s *Session) RenderCase(name string) ([]byte, error) {
	c, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Render(c.Setup)
}

// SaveCasePNG renders a registry case and writes it to a PNG file.
func (s *Session) SaveCasePNG(name, path string) error {
	pixels, err := s.RenderCase(name)
	if err != nil {
		return err
	}
	w, h := s.renderer.Size()
	return mplwgpu.SavePNG(path, pixels, int(w), int(h))
}

// Close releases the renderer.
func (s *Session) Close() {
	s.renderer.Close()
}
