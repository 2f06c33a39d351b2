package plot

import (
	"fmt"
	"math"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
)

// Case is one named chart in the standard case registry, used by the
// golden-image tooling and as live documentation of the chart types.
type Case struct {
	Name  string
	Setup func(p *Plot)
}

// Series palette shared across the cases.
var palette = []mplwgpu.Color{
	mplwgpu.RGB(0.122, 0.467, 0.706),
	mplwgpu.RGB(1.000, 0.498, 0.055),
	mplwgpu.RGB(0.173, 0.627, 0.173),
	mplwgpu.RGB(0.839, 0.153, 0.157),
	mplwgpu.RGB(0.580, 0.404, 0.741),
	mplwgpu.RGB(0.549, 0.337, 0.294),
}

var cases = []Case{
	{"line_plot", lineCase},
	{"scatter_plot", scatterCase},
	{"bar_chart", barCase},
	{"multi_line", multiLineCase},
	{"histogram", histogramCase},
	{"grid_and_labels", gridAndLabelsCase},
	{"heatmap", heatmapCase},
	{"surface_3d", surfaceCase},
	{"pie_chart", pieCase},
	{"box_chart", boxCase},
}

// All returns the full case registry in stable order.
func All() []Case {
	out := make([]Case, len(cases))
	copy(out, cases)
	return out
}

// Lookup finds a case by name.
func Lookup(name string) (Case, error) {
	for _, c := range cases {
		if c.Name == name {
			return c, nil
		}
	}
	return Case{}, fmt.Errorf("plot: unknown case %q", name)
}

// sampleRange returns n evenly spaced values over [lo, hi].
func sampleRange(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// pseudoRandom yields deterministic samples in [0, 1) so golden images
// stay stable across runs and platforms.
func pseudoRandom(n int, seed uint64) []float64 {
	out := make([]float64, n)
	state := seed
	for i := range out {
		state = state*6364136223846793005 + 1442695040888963407
		out[i] = float64(state>>11) / float64(1<<53)
	}
	return out
}

func lineCase(p *Plot) {
	xs := sampleRange(0, 10, 100)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Sin(x)
	}
	p.SetLimits(0, 10, -1.2, 1.2)
	p.SetTitle("sin(x)")
	p.SetXLabel("x")
	p.SetYLabel("y")
	p.DrawFrame()
	p.Line(xs, ys, palette[0], 2)
}

func scatterCase(p *Plot) {
	xs := pseudoRandom(80, 7)
	ys := pseudoRandom(80, 13)
	p.SetLimits(0, 1, 0, 1)
	p.SetTitle("scatter")
	p.DrawFrame()

	third := len(xs) / 3
	p.Scatter(xs[:third], ys[:third], palette[0], 5, mplwgpu.MarkerPlus)
	p.Scatter(xs[third:2*third], ys[third:2*third], palette[1], 5, mplwgpu.MarkerCross)
	p.Scatter(xs[2*third:], ys[2*third:], palette[3], 5, mplwgpu.MarkerDiamond)
}

func barCase(p *Plot) {
	values := []float64{3, 7, 2, 5, 8, 4, 6}
	p.SetLimits(-1, float64(len(values)), 0, 9)
	p.SetTitle("bars")
	p.DrawFrame()
	p.Bars(values, palette[2])
}

func multiLineCase(p *Plot) {
	xs := sampleRange(0, 4*math.Pi, 120)
	p.SetLimits(0, 4*math.Pi, -1.5, 1.5)
	p.SetTitle("phases")
	p.DrawFrame()
	for s := 0; s < 4; s++ {
		phase := float64(s) * math.Pi / 4
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = math.Sin(x + phase)
		}
		p.Line(xs, ys, palette[s%len(palette)], 2)
	}
}

func histogramCase(p *Plot) {
	// Sum of uniforms approximates a normal distribution.
	u1 := pseudoRandom(500, 3)
	u2 := pseudoRandom(500, 17)
	u3 := pseudoRandom(500, 31)
	samples := make([]float64, len(u1))
	for i := range samples {
		samples[i] = u1[i] + u2[i] + u3[i]
	}
	p.SetLimits(0, 3, 0, 70)
	p.SetTitle("histogram")
	p.DrawFrame()
	p.Histogram(samples, 20, palette[4])
}

func gridAndLabelsCase(p *Plot) {
	p.SetLimits(-5, 5, -100, 100)
	p.SetTitle("grid and labels")
	p.SetXLabel("input")
	p.SetYLabel("output")
	p.DrawFrame()

	xs := sampleRange(-5, 5, 60)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x * x * 0.7
	}
	p.DashedLine(xs, ys, palette[5], 2, 8, 5)
}

func heatmapCase(p *Plot) {
	const n = 24
	values := make([][]float64, n)
	for r := range values {
		values[r] = make([]float64, n)
		for c := range values[r] {
			x := float64(c)/n*4 - 2
			y := float64(r)/n*4 - 2
			values[r][c] = math.Exp(-(x*x + y*y) / 2)
		}
	}
	p.SetLimits(0, n, 0, n)
	p.SetTitle("heatmap")
	p.DrawFrame()
	p.Heatmap(values)
}

func surfaceCase(p *Plot) {
	p.SetLimits(-2, 2, -2, 2)
	p.Surface3D(func(x, y float64) float64 {
		r := math.Sqrt(x*x + y*y)
		if r < 1e-9 {
			return 1
		}
		return math.Sin(3*r) / (3 * r)
	}, 40)
}

func pieCase(p *Plot) {
	p.Pie([]float64{30, 22, 18, 15, 10, 5}, palette)
}

func boxCase(p *Plot) {
	groups := make([][]float64, 4)
	for g := range groups {
		base := pseudoRandom(60, uint64(41+g*7))
		groups[g] = make([]float64, len(base))
		for i, v := range base {
			groups[g][i] = v*2 + float64(g)*0.8
		}
	}
	p.SetLimits(-1, float64(len(groups)), -0.5, 5)
	p.SetTitle("box")
	p.DrawFrame()
	p.Box(groups, palette[0].WithAlpha(0.6))
}
