package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Presentation errors.
var (
	// ErrInvalidDrawContext is returned when the draw context cannot
	// create textures.
	ErrInvalidDrawContext = errors.New("render: dc does not provide a texture creator")

	// ErrInvalidPixels is returned when the pixel buffer does not match
	// the stated dimensions.
	ErrInvalidPixels = errors.New("render: pixel buffer size mismatch")
)

// PresentTo uploads a captured RGBA frame into a host application's draw
// context and draws it at (x, y). The dc parameter comes from the host's
// windowing layer, e.g. gogpu.Context.AsTextureDrawer().
//
// The pixel buffer is straight-alpha RGBA as returned by Capture.
func PresentTo(dc gpucontext.TextureDrawer, pixels []byte, width, height int, x, y float32) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidPixels, len(pixels), width, height)
	}

	creator := dc.TextureCreator()
	if creator == nil {
		return ErrInvalidDrawContext
	}

	tex, err := creator.NewTextureFromRGBA(width, height, pixels)
	if err != nil {
		return fmt.Errorf("render: create texture: %w", err)
	}
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// Present draws a captured frame at the origin.
func Present(dc gpucontext.TextureDrawer, pixels []byte, width, height int) error {
	return PresentTo(dc, pixels, width, height, 0, 0)
}
