package gpu

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Atlas errors.
var (
	// ErrAtlasFull is returned when the atlas cannot fit a glyph.
	ErrAtlasFull = errors.New("gpu: glyph atlas is full")
)

// glyphAtlasSize is the atlas texture dimension. A 1024x1024 atlas holds
// every glyph a plot's tick labels and titles realistically need.
const glyphAtlasSize = 1024

// atlasPadding is the spacing between packed glyphs, preventing linear
// sampling from bleeding neighboring glyphs.
const atlasPadding = 1

// Region is a rectangular glyph slot in the atlas, in texels.
type Region struct {
	X, Y, Width, Height int
}

// IsValid reports whether the region has usable dimensions.
func (r Region) IsValid() bool { return r.Width > 0 && r.Height > 0 }

// GlyphKey identifies a rasterized glyph in the atlas cache: the font's
// glyph ID at an integer pixel size.
type GlyphKey struct {
	GID    uint32
	SizePx uint16
}

// shelf is one horizontal row of the shelf-packing allocator.
type shelf struct {
	y      int
	height int
	nextX  int
}

// GlyphAtlas packs rasterized glyph coverage masks into one GPU texture
// using a shelf-packing allocator. The CPU-side copy is re-uploaded in
// full when dirty, once per frame at most.
//
// GlyphAtlas is safe for concurrent use.
type GlyphAtlas struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	tex  hal.Texture
	view hal.TextureView

	// CPU copy, RGBA. Coverage goes to the alpha channel; color comes
	// from the quad vertices.
	data  []byte
	dirty bool

	shelves []shelf
	cache   map[GlyphKey]Region
}

// NewGlyphAtlas creates the atlas texture and an empty cache.
func NewGlyphAtlas(device hal.Device, queue hal.Queue) (*GlyphAtlas, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_atlas",
		Size:          hal.Extent3D{Width: glyphAtlasSize, Height: glyphAtlasSize, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create glyph atlas texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "glyph_atlas_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create glyph atlas view: %w", err)
	}

	return &GlyphAtlas{
		device: device,
		queue:  queue,
		tex:    tex,
		view:   view,
		data:   make([]byte, glyphAtlasSize*glyphAtlasSize*4),
		cache:  make(map[GlyphKey]Region),
	}, nil
}

// Lookup returns the cached region for a glyph, if present.
func (a *GlyphAtlas) Lookup(key GlyphKey) (Region, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.cache[key]
	return r, ok
}

// Insert packs a glyph coverage mask into the atlas and caches its
// region. Returns ErrAtlasFull when no shelf can take the glyph.
func (a *GlyphAtlas) Insert(key GlyphKey, mask *image.Alpha) (Region, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.cache[key]; ok {
		return r, nil
	}

	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	region, err := a.allocate(w, h)
	if err != nil {
		return Region{}, err
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cov := mask.AlphaAt(b.Min.X+x, b.Min.Y+y).A
			off := ((region.Y+y)*glyphAtlasSize + region.X + x) * 4
			a.data[off] = 255
			a.data[off+1] = 255
			a.data[off+2] = 255
			a.data[off+3] = cov
		}
	}
	a.dirty = true
	a.cache[key] = region
	return region, nil
}

// allocate finds a shelf slot for a w x h glyph. Caller holds the lock.
func (a *GlyphAtlas) allocate(w, h int) (Region, error) {
	if w <= 0 || h <= 0 {
		return Region{}, fmt.Errorf("gpu: invalid glyph size %dx%d", w, h)
	}
	pw, ph := w+atlasPadding, h+atlasPadding
	if pw > glyphAtlasSize || ph > glyphAtlasSize {
		return Region{}, ErrAtlasFull
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > glyphAtlasSize {
			continue
		}
		if ph > s.height {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, Width: w, Height: h}
		s.nextX += pw
		return r, nil
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := &a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+ph > glyphAtlasSize {
		return Region{}, ErrAtlasFull
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: ph, nextX: pw})
	return Region{X: 0, Y: newY, Width: w, Height: h}, nil
}

// Flush uploads the CPU copy to the GPU texture if any glyph was
// inserted since the last flush.
func (a *GlyphAtlas) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.dirty {
		return
	}
	a.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: a.tex, MipLevel: 0},
		a.data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: glyphAtlasSize * 4, RowsPerImage: glyphAtlasSize},
		&hal.Extent3D{Width: glyphAtlasSize, Height: glyphAtlasSize, DepthOrArrayLayers: 1},
	)
	a.dirty = false
	slogger().Debug("gpu: glyph atlas uploaded", "glyphs", len(a.cache))
}

// View returns the atlas texture view for bind groups.
func (a *GlyphAtlas) View() hal.TextureView { return a.view }

// Size returns the atlas dimension in texels.
func (a *GlyphAtlas) Size() int { return glyphAtlasSize }

// GlyphCount returns the number of cached glyphs.
func (a *GlyphAtlas) GlyphCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

// Destroy releases the atlas GPU resources.
func (a *GlyphAtlas) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view != nil {
		a.device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.tex != nil {
		a.device.DestroyTexture(a.tex)
		a.tex = nil
	}
}
