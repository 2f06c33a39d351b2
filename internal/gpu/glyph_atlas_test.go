//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"testing"
)

func solidMask(w, h int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = 0xFF
	}
	return m
}

func TestGlyphAtlasInsertLookup(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	atlas, err := NewGlyphAtlas(device, queue)
	if err != nil {
		t.Fatalf("NewGlyphAtlas failed: %v", err)
	}
	defer atlas.Destroy()

	key := GlyphKey{GID: 42, SizePx: 16}
	if _, ok := atlas.Lookup(key); ok {
		t.Fatal("Lookup hit on empty atlas")
	}

	region, err := atlas.Insert(key, solidMask(10, 14))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if region.Width != 10 || region.Height != 14 {
		t.Errorf("region = %+v, want 10x14", region)
	}

	got, ok := atlas.Lookup(key)
	if !ok {
		t.Fatal("Lookup miss after Insert")
	}
	if got != region {
		t.Errorf("Lookup = %+v, want %+v", got, region)
	}
	if atlas.GlyphCount() != 1 {
		t.Errorf("GlyphCount = %d, want 1", atlas.GlyphCount())
	}

	// Re-inserting the same key returns the cached region.
	again, err := atlas.Insert(key, solidMask(10, 14))
	if err != nil {
		t.Fatalf("repeat Insert failed: %v", err)
	}
	if again != region {
		t.Errorf("repeat Insert = %+v, want cached %+v", again, region)
	}
}

func TestGlyphAtlasShelfPacking(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	atlas, err := NewGlyphAtlas(device, queue)
	if err != nil {
		t.Fatalf("NewGlyphAtlas failed: %v", err)
	}
	defer atlas.Destroy()

	// Same-height glyphs should share a shelf; no overlaps.
	seen := make(map[Region]GlyphKey)
	for i := 0; i < 20; i++ {
		key := GlyphKey{GID: uint32(i), SizePx: 16}
		region, err := atlas.Insert(key, solidMask(12, 16))
		if err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		for other := range seen {
			if region.X < other.X+other.Width && other.X < region.X+region.Width &&
				region.Y < other.Y+other.Height && other.Y < region.Y+region.Height {
				t.Fatalf("region %+v overlaps %+v", region, other)
			}
		}
		seen[region] = key
	}
}

func TestGlyphAtlasFull(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	atlas, err := NewGlyphAtlas(device, queue)
	if err != nil {
		t.Fatalf("NewGlyphAtlas failed: %v", err)
	}
	defer atlas.Destroy()

	if _, err := atlas.Insert(GlyphKey{GID: 1}, solidMask(glyphAtlasSize+1, 8)); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("oversized insert error = %v, want ErrAtlasFull", err)
	}

	// Fill with full-width shelves until vertical space runs out.
	var i uint32
	for {
		_, err := atlas.Insert(GlyphKey{GID: 1000 + i}, solidMask(glyphAtlasSize-atlasPadding, 100))
		if err != nil {
			if !errors.Is(err, ErrAtlasFull) {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}
		i++
		if i > 20 {
			t.Fatal("atlas never reported full")
		}
	}
}

func TestGlyphAtlasFlush(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	atlas, err := NewGlyphAtlas(device, queue)
	if err != nil {
		t.Fatalf("NewGlyphAtlas failed: %v", err)
	}
	defer atlas.Destroy()

	// Flush on a clean atlas is a no-op.
	atlas.Flush()

	if _, err := atlas.Insert(GlyphKey{GID: 7, SizePx: 12}, solidMask(8, 8)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	atlas.Flush()
	if atlas.dirty {
		t.Error("atlas still dirty after Flush")
	}
}
