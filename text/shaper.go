package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Glyph is one shaped, positioned glyph. Offsets are relative to the
// pen position at the glyph's start; X/Y place the glyph origin on the
// baseline in pixels, y-down.
type Glyph struct {
	GID  uint32
	Rune rune

	// Pen position of the glyph origin, relative to the run start.
	X, Y float32

	// XAdvance is the pen advance after this glyph.
	XAdvance float32
}

// Metrics describes a shaped run's extent in pixels.
type Metrics struct {
	Width   float32
	Ascent  float32
	Descent float32
}

// Height returns the run's total vertical extent.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent }

var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Shape lays out a string at the given pixel size and returns positioned
// glyphs with run metrics. Glyph positions are pen positions on the
// baseline starting at x=0; the caller adds its own origin.
//
// The paragraph's base direction comes from the Unicode bidi algorithm,
// so Hebrew or Arabic labels shape right to left.
func Shape(face *Face, s string, sizePx float32) ([]Glyph, Metrics) {
	if face == nil || s == "" || sizePx <= 0 {
		return nil, Metrics{}
	}
	runes := []rune(s)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: baseDirection(s),
		Face:      gtfont.NewFace(face.shapeFont),
		Size:      fixed.Int26_6(sizePx * 64),
		Script:    language.LookupScript(runes[0]),
		Language:  language.NewLanguage("en"),
	}

	shaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := shaper.Shape(input)
	shaperPool.Put(shaper)

	glyphs := make([]Glyph, 0, len(out.Glyphs))
	var penX float32
	for _, g := range out.Glyphs {
		r := rune(0)
		if g.ClusterIndex >= 0 && g.ClusterIndex < len(runes) {
			r = runes[g.ClusterIndex]
		}
		glyphs = append(glyphs, Glyph{
			GID:      uint32(g.GlyphID),
			Rune:     r,
			X:        penX + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: fixedToFloat(g.XAdvance),
		})
		penX += fixedToFloat(g.XAdvance)
	}

	m := Metrics{
		Width:   fixedToFloat(out.Advance),
		Ascent:  fixedToFloat(out.LineBounds.Ascent),
		Descent: -fixedToFloat(out.LineBounds.Descent),
	}
	return glyphs, m
}

// Measure returns the pixel width and height of a string at the given
// size without retaining the glyphs.
func Measure(face *Face, s string, sizePx float32) (w, h float32) {
	_, m := Shape(face, s, sizePx)
	return m.Width, m.Height()
}

// baseDirection resolves the paragraph direction of s. Resolution errors
// fall back to left-to-right.
func baseDirection(s string) di.Direction {
	var p bidi.Paragraph
	if _, err := p.SetString(s); err != nil {
		return di.DirectionLTR
	}
	ord, err := p.Order()
	if err != nil || ord.NumRuns() == 0 {
		return di.DirectionLTR
	}
	if p.IsLeftToRight() {
		return di.DirectionLTR
	}
	return di.DirectionRTL
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
