package mplwgpu

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// EncodePNG writes a tightly packed RGBA buffer as a PNG image.
func EncodePNG(w io.Writer, pix []byte, width, height int) error {
	if len(pix) != width*height*4 {
		return fmt.Errorf("png: buffer size %d, want %d", len(pix), width*height*4)
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return png.Encode(w, img)
}

// SavePNG writes a tightly packed RGBA buffer to a PNG file.
func SavePNG(path string, pix []byte, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("png: %w", err)
	}
	defer f.Close()
	if err := EncodePNG(f, pix, width, height); err != nil {
		return err
	}
	return f.Close()
}

// LoadPNG reads a PNG file into a tightly packed RGBA buffer.
func LoadPNG(path string) (pix []byte, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("png: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("png: decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == width*4 {
		return rgba.Pix, width, height, nil
	}

	pix = make([]byte, width*height*4)
	off := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			pix[off] = byte(r >> 8)
			pix[off+1] = byte(g >> 8)
			pix[off+2] = byte(b >> 8)
			pix[off+3] = byte(a >> 8)
			off += 4
		}
	}
	return pix, width, height, nil
}
