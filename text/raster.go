package text

import (
	"fmt"
	"image"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// RasterizedGlyph is a glyph coverage mask with the placement data
// needed to position its quad: the bearing from the pen position to the
// mask's top-left corner, in pixels, y-down.
type RasterizedGlyph struct {
	Mask     *image.Alpha
	BearingX float32
	BearingY float32
}

// Empty reports whether the glyph has no visible coverage, as for a
// space character.
func (g RasterizedGlyph) Empty() bool {
	return g.Mask == nil || g.Mask.Bounds().Empty()
}

// Rasterize renders one rune of the face at the given pixel size into an
// alpha coverage mask. Whitespace and other ink-free runes return an
// empty glyph with no error.
func Rasterize(face *Face, r rune, sizePx float32) (RasterizedGlyph, error) {
	if face == nil || sizePx <= 0 {
		return RasterizedGlyph{}, fmt.Errorf("text: rasterize: invalid face or size")
	}

	face.mu.Lock()
	defer face.mu.Unlock()

	xf, err := opentype.NewFace(face.sfntFont, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return RasterizedGlyph{}, fmt.Errorf("text: create raster face: %w", err)
	}
	defer xf.Close()

	bounds, _, ok := xf.GlyphBounds(r)
	if !ok {
		return RasterizedGlyph{}, fmt.Errorf("text: glyph %q not in font", r)
	}

	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if w <= 0 || h <= 0 {
		return RasterizedGlyph{}, nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: xf,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(string(r))

	return RasterizedGlyph{
		Mask:     mask,
		BearingX: fixedToFloat(bounds.Min.X),
		BearingY: fixedToFloat(bounds.Min.Y),
	}, nil
}
