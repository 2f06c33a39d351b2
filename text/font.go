// Package text provides the CPU side of the text collaborator: font
// parsing, HarfBuzz shaping, measurement, and glyph rasterization into
// coverage masks for the GPU glyph atlas.
package text

import (
	"bytes"
	"fmt"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Face bundles the two parsed forms of one font: the go-text Font used
// for shaping (thread-safe, read-only) and the sfnt form used for glyph
// rasterization. Rasterization state is guarded internally, so a Face
// can be shared.
type Face struct {
	shapeFont *gtfont.Font
	sfntFont  *sfnt.Font

	mu sync.Mutex
}

// Parse parses TTF/OTF font data into a Face.
func Parse(data []byte) (*Face, error) {
	gtFace, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font outlines: %w", err)
	}
	return &Face{shapeFont: gtFace.Font, sfntFont: sf}, nil
}

var (
	defaultFaceOnce sync.Once
	defaultFace     *Face
	defaultFaceErr  error
)

// DefaultFace returns the embedded Go Regular face. Parsed once and
// shared; callers must not assume exclusive ownership.
func DefaultFace() (*Face, error) {
	defaultFaceOnce.Do(func() {
		defaultFace, defaultFaceErr = Parse(goregular.TTF)
	})
	return defaultFace, defaultFaceErr
}
