//go:build !nogpu

package plot

import (
	"path/filepath"
	"testing"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
)

// newGPUSession skips the test when no adapter is available.
func newGPUSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(640, 480)
	if err != nil {
		t.Skipf("no GPU available: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSessionRenderCase(t *testing.T) {
	s := newGPUSession(t)

	pix, err := s.RenderCase("line_plot")
	if err != nil {
		t.Fatalf("RenderCase: %v", err)
	}
	if len(pix) != 640*480*4 {
		t.Fatalf("pixel buffer = %d bytes, want %d", len(pix), 640*480*4)
	}

	// The chart must have drawn something over the white background.
	background := 0
	for p := 0; p < 640*480; p++ {
		if pix[p*4] == 255 && pix[p*4+1] == 255 && pix[p*4+2] == 255 {
			background++
		}
	}
	if background == 640*480 {
		t.Error("rendered case is entirely background")
	}
}

func TestSessionRenderCaseUnknown(t *testing.T) {
	s := newGPUSession(t)
	if _, err := s.RenderCase("bogus"); err == nil {
		t.Error("unknown case should error")
	}
}

func TestSessionRenderIsolation(t *testing.T) {
	s := newGPUSession(t)

	a, err := s.RenderCase("bar_chart")
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if _, err := s.RenderCase("pie_chart"); err != nil {
		t.Fatalf("second render: %v", err)
	}
	b, err := s.RenderCase("bar_chart")
	if err != nil {
		t.Fatalf("third render: %v", err)
	}

	res, err := mplwgpu.Compare(a, b, 640, 480)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !res.Match() {
		t.Errorf("same case differs across renders: %v", res)
	}
}

func TestSessionSaveCasePNG(t *testing.T) {
	s := newGPUSession(t)

	path := filepath.Join(t.TempDir(), "scatter.png")
	if err := s.SaveCasePNG("scatter_plot", path); err != nil {
		t.Fatalf("SaveCasePNG: %v", err)
	}
	_, w, h, err := mplwgpu.LoadPNG(path)
	if err != nil {
		t.Fatalf("LoadPNG: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("PNG size = %dx%d, want 640x480", w, h)
	}
}
