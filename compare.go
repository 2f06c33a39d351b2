package mplwgpu

import (
	"fmt"
	"math"
)

// SoftThreshold is the per-channel difference below which two pixels are
// still counted as matching. GPU rasterization differs slightly across
// drivers at anti-aliased edges; a small tolerance keeps golden-image
// comparisons stable without hiding real regressions.
const SoftThreshold = 5

// CompareResult summarizes the difference between two RGBA buffers.
type CompareResult struct {
	// RMSE is the root mean square error over all channels.
	RMSE float64
	// MaxDiff is the largest single-channel difference found.
	MaxDiff int
	// DiffPct is the percentage of pixels exceeding SoftThreshold.
	DiffPct float64
	// DiffCount is the number of pixels exceeding SoftThreshold.
	DiffCount int
}

// Match reports whether the images agree within the soft threshold.
func (r CompareResult) Match() bool {
	return r.DiffCount == 0
}

// String formats the result for log output.
func (r CompareResult) String() string {
	return fmt.Sprintf("rmse=%.3f max=%d diff=%.2f%% (%d px)",
		r.RMSE, r.MaxDiff, r.DiffPct, r.DiffCount)
}

// Compare computes difference statistics between two tightly packed RGBA
// buffers of the given dimensions. Both buffers must hold exactly
// width*height*4 bytes.
func Compare(a, b []byte, width, height int) (CompareResult, error) {
	n := width * height * 4
	if len(a) != n || len(b) != n {
		return CompareResult{}, fmt.Errorf("compare: buffer sizes %d/%d, want %d", len(a), len(b), n)
	}

	var res CompareResult
	var sumSq float64
	for p := 0; p < width*height; p++ {
		off := p * 4
		pixelMax := 0
		for c := 0; c < 4; c++ {
			d := int(a[off+c]) - int(b[off+c])
			if d < 0 {
				d = -d
			}
			sumSq += float64(d) * float64(d)
			if d > pixelMax {
				pixelMax = d
			}
		}
		if pixelMax > res.MaxDiff {
			res.MaxDiff = pixelMax
		}
		if pixelMax > SoftThreshold {
			res.DiffCount++
		}
	}
	res.RMSE = math.Sqrt(sumSq / float64(n))
	res.DiffPct = 100 * float64(res.DiffCount) / float64(width*height)
	return res, nil
}

// DiffImage renders a heatmap of the differences between two RGBA
// buffers: matching pixels dark green, differing pixels red with the
// color channel delta amplified tenfold for visibility. Alpha is ignored.
// The result is a packed RGBA buffer of the same dimensions.
func DiffImage(a, b []byte, width, height int) ([]byte, error) {
	n := width * height * 4
	if len(a) != n || len(b) != n {
		return nil, fmt.Errorf("diff: buffer sizes %d/%d, want %d", len(a), len(b), n)
	}

	out := make([]byte, n)
	for p := 0; p < width*height; p++ {
		off := p * 4
		pixelMax := 0
		for c := 0; c < 3; c++ {
			d := int(a[off+c]) - int(b[off+c])
			if d < 0 {
				d = -d
			}
			if d > pixelMax {
				pixelMax = d
			}
		}
		if pixelMax <= SoftThreshold {
			out[off+1] = 128
		} else {
			r := pixelMax * 10
			if r > 255 {
				r = 255
			}
			out[off] = byte(r)
		}
		out[off+3] = 255
	}
	return out, nil
}
