// Package render composes the GPU pipelines into an off-screen renderer:
// scenes go in, tightly packed RGBA pixel buffers come out.
package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
	"github.com/KlingelDev/mpl-wgpu/internal/gpu"
	"github.com/KlingelDev/mpl-wgpu/text"
)

// ErrClosed is returned by operations on a closed renderer.
var ErrClosed = errors.New("render: renderer is closed")

// Config controls renderer creation.
type Config struct {
	Width  uint32
	Height uint32

	// ClearColor is the background each capture starts from.
	ClearColor mplwgpu.Color

	// Font is TTF/OTF data for text runs. Empty selects the embedded
	// Go Regular face.
	Font []byte

	// PreferSPIRV compiles shaders to SPIR-V ahead of module creation
	// instead of handing WGSL to the backend.
	PreferSPIRV bool
}

// DefaultConfig returns a white-background configuration at the given
// pixel dimensions.
func DefaultConfig(width, height uint32) Config {
	return Config{
		Width:      width,
		Height:     height,
		ClearColor: mplwgpu.White,
	}
}

// Headless renders scenes to an off-screen target and reads the pixels
// back synchronously. One capture is in flight at a time; Headless is
// not safe for concurrent use.
type Headless struct {
	cfg Config

	dev      *gpu.Device
	prim     *gpu.PrimitivePipeline
	textPipe *gpu.TextPipeline
	target   *gpu.CaptureTarget

	face *text.Face

	// CPU-side glyph placement cache, paralleling the atlas region cache.
	metrics map[gpu.GlyphKey]glyphMetrics

	closed bool
}

type glyphMetrics struct {
	bearingX float32
	bearingY float32
	empty    bool
}

// NewHeadless acquires a GPU device and builds the full pipeline set.
func NewHeadless(cfg Config) (*Headless, error) {
	dev, err := gpu.NewDevice()
	if err != nil {
		return nil, err
	}
	h, err := newHeadless(dev, cfg)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return h, nil
}

// NewHeadlessFrom builds the renderer on an externally owned device and
// queue. Close leaves the external handles alive.
func NewHeadlessFrom(device hal.Device, queue hal.Queue, cfg Config) (*Headless, error) {
	return newHeadless(gpu.NewDeviceFrom(device, queue), cfg)
}

func newHeadless(dev *gpu.Device, cfg Config) (*Headless, error) {
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	var face *text.Face
	var err error
	if len(cfg.Font) > 0 {
		face, err = text.Parse(cfg.Font)
	} else {
		face, err = text.DefaultFace()
	}
	if err != nil {
		return nil, err
	}

	h := &Headless{
		cfg:     cfg,
		dev:     dev,
		face:    face,
		metrics: make(map[gpu.GlyphKey]glyphMetrics),
	}

	h.prim, err = gpu.NewPrimitivePipeline(dev.HAL(), dev.Queue(), cfg.PreferSPIRV)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.textPipe, err = gpu.NewTextPipeline(dev.HAL(), dev.Queue(), cfg.PreferSPIRV)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.target, err = gpu.NewCaptureTarget(dev.HAL(), dev.Queue(), cfg.Width, cfg.Height)
	if err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// Size returns the render target dimensions.
func (h *Headless) Size() (uint32, uint32) {
	return h.cfg.Width, h.cfg.Height
}

// Face returns the renderer's font face, for layout measurement.
func (h *Headless) Face() *text.Face { return h.face }

// Resize recreates the capture target at new dimensions.
func (h *Headless) Resize(width, height uint32) error {
	if h.closed {
		return ErrClosed
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	if err := h.target.Resize(width, height); err != nil {
		return err
	}
	h.cfg.Width = width
	h.cfg.Height = height
	return nil
}

// Capture renders the scene once and returns a tightly packed RGBA
// buffer of width*height*4 bytes. The scene is not cleared: capturing
// again without modification reproduces the same image, and appending
// more content between captures draws incrementally on the same batch.
//
// Without a scene camera override the scene is rendered with a y-down
// screen-space orthographic projection in pixel units.
func (h *Headless) Capture(scene *mplwgpu.Scene) ([]byte, error) {
	if h.closed {
		return nil, ErrClosed
	}

	w, h2 := h.cfg.Width, h.cfg.Height
	viewProj, cameraPos, ok := scene.Camera()
	if !ok {
		viewProj = mplwgpu.ScreenOrtho(float32(w), float32(h2))
		cameraPos = [3]float32{float32(w) * 0.5, float32(h2) * 0.5, -1}
	}

	uniforms := mplwgpu.PackUniforms(viewProj, float32(w), float32(h2), cameraPos)
	if err := h.prim.Prepare(scene.Instances(), uniforms); err != nil {
		return nil, err
	}

	quads, err := h.buildTextQuads(scene.Texts())
	if err != nil {
		return nil, err
	}
	if err := h.textPipe.Prepare(quads, float32(w), float32(h2)); err != nil {
		return nil, err
	}
	defer h.textPipe.EndFrame()

	clear := h.cfg.ClearColor
	return h.target.Capture([4]float32{clear.R, clear.G, clear.B, clear.A}, func(rp hal.RenderPassEncoder) {
		h.prim.RecordDraws(rp)
		h.textPipe.RecordDraws(rp)
	})
}

// SavePNG captures the scene and writes it as a PNG file.
func (h *Headless) SavePNG(scene *mplwgpu.Scene, path string) error {
	pixels, err := h.Capture(scene)
	if err != nil {
		return err
	}
	return mplwgpu.SavePNG(path, pixels, int(h.cfg.Width), int(h.cfg.Height))
}

// buildTextQuads shapes every text run, rasterizes missing glyphs into
// the atlas, and emits positioned quads in pixel space.
func (h *Headless) buildTextQuads(runs []mplwgpu.TextRun) ([]gpu.TextQuad, error) {
	if len(runs) == 0 {
		return nil, nil
	}

	atlas := h.textPipe.Atlas()
	atlasSize := float32(atlas.Size())
	var quads []gpu.TextQuad

	for _, run := range runs {
		glyphs, _ := text.Shape(h.face, run.Text, run.Size)
		color := [4]float32{run.Color.R, run.Color.G, run.Color.B, run.Color.A}

		for _, g := range glyphs {
			if g.Rune == 0 {
				continue
			}
			key := gpu.GlyphKey{GID: g.GID, SizePx: uint16(run.Size + 0.5)}
			m, known := h.metrics[key]
			if !known {
				rg, err := text.Rasterize(h.face, g.Rune, run.Size)
				if err != nil {
					return nil, fmt.Errorf("render: rasterize %q: %w", g.Rune, err)
				}
				m = glyphMetrics{bearingX: rg.BearingX, bearingY: rg.BearingY, empty: rg.Empty()}
				h.metrics[key] = m
				if !m.empty {
					if _, err := atlas.Insert(key, rg.Mask); err != nil {
						return nil, fmt.Errorf("render: atlas insert %q: %w", g.Rune, err)
					}
				}
			}
			if m.empty {
				continue
			}
			region, ok := atlas.Lookup(key)
			if !ok || !region.IsValid() {
				continue
			}
			x0 := run.X + g.X + m.bearingX
			y0 := run.Y + g.Y + m.bearingY
			quads = append(quads, quadFor(region, x0, y0, atlasSize, color))
		}
	}
	return quads, nil
}

func quadFor(region gpu.Region, x0, y0, atlasSize float32, color [4]float32) gpu.TextQuad {
	return gpu.TextQuad{
		X0:    x0,
		Y0:    y0,
		X1:    x0 + float32(region.Width),
		Y1:    y0 + float32(region.Height),
		U0:    float32(region.X) / atlasSize,
		V0:    float32(region.Y) / atlasSize,
		U1:    float32(region.X+region.Width) / atlasSize,
		V1:    float32(region.Y+region.Height) / atlasSize,
		Color: color,
	}
}

// Close releases all pipelines, the capture target, and a device that
// the renderer owns. Safe to call multiple times.
func (h *Headless) Close() {
	if h.closed {
		return
	}
	h.closed = true
	if h.target != nil {
		h.target.Destroy()
		h.target = nil
	}
	if h.textPipe != nil {
		h.textPipe.Destroy()
		h.textPipe = nil
	}
	if h.prim != nil {
		h.prim.Destroy()
		h.prim = nil
	}
	if h.dev != nil {
		h.dev.Close()
		h.dev = nil
	}
}
