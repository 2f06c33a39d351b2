// Package plot translates chart-level drawing (axes, ticks, series) into
// primitive batches on a scene. It owns layout and data-to-pixel
// transforms; rasterization stays with the render package.
package plot

import (
	"fmt"
	"math"
	"sort"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
	"github.com/KlingelDev/mpl-wgpu/text"
)

// Default chart layout, in pixels.
const (
	marginLeft   = 60
	marginRight  = 20
	marginTop    = 40
	marginBottom = 50

	tickLength    = 5
	tickLabelSize = 11
	axisLabelSize = 13
	titleSize     = 16
)

// Chart colors shared by the standard cases.
var (
	axisColor  = mplwgpu.RGB(0.2, 0.2, 0.2)
	gridColor  = mplwgpu.RGB(0.85, 0.85, 0.85)
	labelColor = mplwgpu.RGB(0.1, 0.1, 0.1)
)

// Plot lays out one chart on a scene. Data coordinates are mapped into
// the axes rectangle left after margins; y grows upward in data space
// and downward in pixels.
type Plot struct {
	scene *mplwgpu.Scene
	face  *text.Face

	width  float32
	height float32

	xMin, xMax float64
	yMin, yMax float64

	title  string
	xLabel string
	yLabel string
}

// New creates a plot covering a width x height pixel canvas. The face is
// used to measure labels for centering; nil disables measurement and
// labels are left-aligned.
func New(scene *mplwgpu.Scene, face *text.Face, width, height float32) *Plot {
	return &Plot{
		scene:  scene,
		face:   face,
		width:  width,
		height: height,
		xMin:   0, xMax: 1,
		yMin: 0, yMax: 1,
	}
}

// SetLimits fixes the data-coordinate window. Degenerate ranges are
// widened so the transform stays finite.
func (p *Plot) SetLimits(xMin, xMax, yMin, yMax float64) {
	if xMax <= xMin {
		xMax = xMin + 1
	}
	if yMax <= yMin {
		yMax = yMin + 1
	}
	p.xMin, p.xMax = xMin, xMax
	p.yMin, p.yMax = yMin, yMax
}

// SetTitle sets the centered chart title.
func (p *Plot) SetTitle(s string) { p.title = s }

// SetXLabel sets the x axis label.
func (p *Plot) SetXLabel(s string) { p.xLabel = s }

// SetYLabel sets the y axis label.
func (p *Plot) SetYLabel(s string) { p.yLabel = s }

// axesRect returns the pixel rectangle holding the data area.
func (p *Plot) axesRect() (x, y, w, h float32) {
	return marginLeft, marginTop,
		p.width - marginLeft - marginRight,
		p.height - marginTop - marginBottom
}

// ToPixel maps a data point into pixel coordinates.
func (p *Plot) ToPixel(x, y float64) (float32, float32) {
	ax, ay, aw, ah := p.axesRect()
	px := ax + float32((x-p.xMin)/(p.xMax-p.xMin))*aw
	py := ay + ah - float32((y-p.yMin)/(p.yMax-p.yMin))*ah
	return px, py
}

// textWidth measures a label, falling back to a crude estimate without
// a face.
func (p *Plot) textWidth(s string, size float32) float32 {
	if p.face != nil {
		w, _ := text.Measure(p.face, s, size)
		return w
	}
	return 0.55 * size * float32(len(s))
}

// DrawFrame draws the grid, the axes box, tick marks with labels, the
// axis labels and the title. Call after SetLimits and before series so
// data draws over the grid.
func (p *Plot) DrawFrame() {
	ax, ay, aw, ah := p.axesRect()

	xTicks := niceTicks(p.xMin, p.xMax, 6)
	yTicks := niceTicks(p.yMin, p.yMax, 6)

	for _, t := range xTicks {
		px, _ := p.ToPixel(t, p.yMin)
		p.scene.Line(px, ay, 0, px, ay+ah, 0, 1, gridColor, 0, 0, 0)
	}
	for _, t := range yTicks {
		_, py := p.ToPixel(p.xMin, t)
		p.scene.Line(ax, py, 0, ax+aw, py, 0, 1, gridColor, 0, 0, 0)
	}

	// Axes box on top of the grid.
	p.scene.Rect(ax, ay, aw, ah, axisColor, 0, 1.5, 0)

	for _, t := range xTicks {
		px, _ := p.ToPixel(t, p.yMin)
		p.scene.Line(px, ay+ah, 0, px, ay+ah+tickLength, 0, 1.5, axisColor, 0, 0, 0)
		label := formatTick(t)
		lw := p.textWidth(label, tickLabelSize)
		p.scene.Text(label, px-lw/2, ay+ah+tickLength+tickLabelSize+2, tickLabelSize, labelColor)
	}
	for _, t := range yTicks {
		_, py := p.ToPixel(p.xMin, t)
		p.scene.Line(ax-tickLength, py, 0, ax, py, 0, 1.5, axisColor, 0, 0, 0)
		label := formatTick(t)
		lw := p.textWidth(label, tickLabelSize)
		p.scene.Text(label, ax-tickLength-lw-4, py+tickLabelSize/2-1, tickLabelSize, labelColor)
	}

	if p.title != "" {
		tw := p.textWidth(p.title, titleSize)
		p.scene.Text(p.title, ax+aw/2-tw/2, marginTop-12, titleSize, labelColor)
	}
	if p.xLabel != "" {
		lw := p.textWidth(p.xLabel, axisLabelSize)
		p.scene.Text(p.xLabel, ax+aw/2-lw/2, p.height-10, axisLabelSize, labelColor)
	}
	if p.yLabel != "" {
		// No glyph rotation; the y label sits above the axis.
		p.scene.Text(p.yLabel, 8, marginTop-12, axisLabelSize, labelColor)
	}
}

// Line draws a polyline through the data points.
func (p *Plot) Line(xs, ys []float64, color mplwgpu.Color, thickness float32) {
	n := min(len(xs), len(ys))
	for i := 1; i < n; i++ {
		x1, y1 := p.ToPixel(xs[i-1], ys[i-1])
		x2, y2 := p.ToPixel(xs[i], ys[i])
		p.scene.Line(x1, y1, 0, x2, y2, 0, thickness, color, 0, 0, 0)
	}
}

// DashedLine draws a polyline with the given dash pattern in pixels.
func (p *Plot) DashedLine(xs, ys []float64, color mplwgpu.Color, thickness, dashLen, gapLen float32) {
	n := min(len(xs), len(ys))
	for i := 1; i < n; i++ {
		x1, y1 := p.ToPixel(xs[i-1], ys[i-1])
		x2, y2 := p.ToPixel(xs[i], ys[i])
		p.scene.Line(x1, y1, 0, x2, y2, 0, thickness, color, dashLen, gapLen, 0)
	}
}

// Scatter draws one marker glyph per data point.
func (p *Plot) Scatter(xs, ys []float64, color mplwgpu.Color, radius float32, kind mplwgpu.MarkerKind) {
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		px, py := p.ToPixel(xs[i], ys[i])
		p.scene.Marker(px, py, 0, radius, color, kind)
	}
}

// Dots draws one filled circle per data point.
func (p *Plot) Dots(xs, ys []float64, color mplwgpu.Color, radius float32) {
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		px, py := p.ToPixel(xs[i], ys[i])
		p.scene.Circle(px, py, 0, radius, color, 0)
	}
}

// Bars draws one filled bar per value, centered on integer x positions.
func (p *Plot) Bars(values []float64, color mplwgpu.Color) {
	if len(values) == 0 {
		return
	}
	barWidth := 0.7
	for i, v := range values {
		x0, y0 := p.ToPixel(float64(i)-barWidth/2, v)
		x1, y1 := p.ToPixel(float64(i)+barWidth/2, 0)
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		p.scene.Rect(x0, y0, x1-x0, y1-y0, color, 0, 0, 0)
		p.scene.Rect(x0, y0, x1-x0, y1-y0, axisColor, 0, 1, 0)
	}
}

// Histogram bins the samples and draws the counts as touching bars.
func (p *Plot) Histogram(samples []float64, bins int, color mplwgpu.Color) {
	if len(samples) == 0 || bins <= 0 {
		return
	}
	lo, hi := samples[0], samples[0]
	for _, s := range samples {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if hi <= lo {
		hi = lo + 1
	}
	counts := make([]int, bins)
	for _, s := range samples {
		b := int(float64(bins) * (s - lo) / (hi - lo))
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	binW := (hi - lo) / float64(bins)
	for i, c := range counts {
		x0, y0 := p.ToPixel(lo+float64(i)*binW, float64(c))
		x1, y1 := p.ToPixel(lo+float64(i+1)*binW, 0)
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		p.scene.Rect(x0, y0, x1-x0, y1-y0, color, 0, 0, 0)
		p.scene.Rect(x0, y0, x1-x0, y1-y0, axisColor, 0, 1, 0)
	}
}

// Heatmap draws a dense value grid as filled cells colored by the
// viridis-style lookup. values is row-major, rows from the top.
func (p *Plot) Heatmap(values [][]float64) {
	rows := len(values)
	if rows == 0 {
		return
	}
	cols := len(values[0])
	if cols == 0 {
		return
	}

	lo, hi := values[0][0], values[0][0]
	for _, row := range values {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}

	ax, ay, aw, ah := p.axesRect()
	cw := aw / float32(cols)
	ch := ah / float32(rows)
	for r, row := range values {
		for c, v := range row {
			t := (v - lo) / (hi - lo)
			// +0.5 overlap hides seams between cells.
			p.scene.Rect(ax+float32(c)*cw, ay+float32(r)*ch, cw+0.5, ch+0.5, colormap(t), 0, 0, 0)
		}
	}
}

// Pie draws a pie chart as a triangle fan centered on the canvas. The
// values are normalized to a full turn.
func (p *Plot) Pie(values []float64, colors []mplwgpu.Color) {
	var total float64
	for _, v := range values {
		total += math.Max(v, 0)
	}
	if total <= 0 {
		return
	}

	cx := p.width / 2
	cy := p.height/2 + (marginTop-marginBottom)/2
	radius := float64(min32(p.width, p.height)) * 0.35

	const segPerTurn = 128
	angle := -math.Pi / 2
	for i, v := range values {
		if v <= 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total
		color := colors[i%len(colors)]
		segs := int(math.Ceil(sweep / (2 * math.Pi) * segPerTurn))
		if segs < 1 {
			segs = 1
		}
		step := sweep / float64(segs)
		for s := 0; s < segs; s++ {
			a0 := angle + float64(s)*step
			a1 := a0 + step
			p.scene.Triangle(
				[3]float32{cx, cy, 0},
				[3]float32{cx + float32(radius*math.Cos(a0)), cy + float32(radius*math.Sin(a0)), 0},
				[3]float32{cx + float32(radius*math.Cos(a1)), cy + float32(radius*math.Sin(a1)), 0},
				color, false)
		}
		angle += sweep
	}
	p.scene.Circle(cx, cy, 0, float32(radius), axisColor, 1.5)
}

// Box draws one box-and-whisker glyph per group at integer x positions.
func (p *Plot) Box(groups [][]float64, color mplwgpu.Color) {
	const boxWidth = 0.5
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		q1, q2, q3 := quartiles(group)
		lo, hi := group[0], group[0]
		for _, v := range group {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		x := float64(i)

		x0, yq3 := p.ToPixel(x-boxWidth/2, q3)
		x1, yq1 := p.ToPixel(x+boxWidth/2, q1)
		p.scene.Rect(x0, yq3, x1-x0, yq1-yq3, color, 0, 0, 0)
		p.scene.Rect(x0, yq3, x1-x0, yq1-yq3, axisColor, 0, 1.5, 0)

		xm0, ym := p.ToPixel(x-boxWidth/2, q2)
		xm1, _ := p.ToPixel(x+boxWidth/2, q2)
		p.scene.Line(xm0, ym, 0, xm1, ym, 0, 2, axisColor, 0, 0, 0)

		// Whiskers with end caps.
		xc, yhi := p.ToPixel(x, hi)
		_, ylo := p.ToPixel(x, lo)
		p.scene.Line(xc, yhi, 0, xc, yq3, 0, 1.5, axisColor, 0, 0, 0)
		p.scene.Line(xc, yq1, 0, xc, ylo, 0, 1.5, axisColor, 0, 0, 0)
		capX0, _ := p.ToPixel(x-boxWidth/4, hi)
		capX1, _ := p.ToPixel(x+boxWidth/4, hi)
		p.scene.Line(capX0, yhi, 0, capX1, yhi, 0, 1.5, axisColor, 0, 0, 0)
		p.scene.Line(capX0, ylo, 0, capX1, ylo, 0, 1.5, axisColor, 0, 0, 0)
	}
}

// Surface3D samples f on a grid over [xMin, xMax] x [yMin, yMax] and
// draws it as lit triangles under a fixed perspective camera. The scene
// camera is overridden; mixing 3D surfaces with screen-space primitives
// in one scene is not supported.
func (p *Plot) Surface3D(f func(x, y float64) float64, gridN int) {
	if gridN < 2 {
		gridN = 2
	}

	heights := make([][]float64, gridN)
	zLo, zHi := math.Inf(1), math.Inf(-1)
	for i := range heights {
		heights[i] = make([]float64, gridN)
		for j := range heights[i] {
			x := p.xMin + (p.xMax-p.xMin)*float64(i)/float64(gridN-1)
			y := p.yMin + (p.yMax-p.yMin)*float64(j)/float64(gridN-1)
			v := f(x, y)
			heights[i][j] = v
			zLo = math.Min(zLo, v)
			zHi = math.Max(zHi, v)
		}
	}
	if zHi <= zLo {
		zHi = zLo + 1
	}

	// World space: the surface spans [-1, 1] in x/z with height in y.
	point := func(i, j int) [3]float32 {
		t := (heights[i][j] - zLo) / (zHi - zLo)
		return [3]float32{
			float32(2*float64(i)/float64(gridN-1) - 1),
			float32(t),
			float32(2*float64(j)/float64(gridN-1) - 1),
		}
	}

	for i := 0; i < gridN-1; i++ {
		for j := 0; j < gridN-1; j++ {
			t := (heights[i][j] - zLo) / (zHi - zLo)
			c := colormap(t)
			p00 := point(i, j)
			p10 := point(i+1, j)
			p01 := point(i, j+1)
			p11 := point(i+1, j+1)
			p.scene.Triangle(p00, p10, p11, c, true)
			p.scene.Triangle(p00, p11, p01, c, true)
		}
	}

	eye := [3]float32{2.2, 1.8, 2.2}
	view := mplwgpu.LookAt(eye, [3]float32{0, 0.3, 0}, [3]float32{0, 1, 0})
	proj := mplwgpu.Perspective(math.Pi/4, p.width/p.height, 0.1, 100)
	p.scene.SetCamera(proj.Mul(view), eye)
}

// colormap maps t in [0, 1] onto a compact viridis-like gradient.
func colormap(t float64) mplwgpu.Color {
	t = math.Max(0, math.Min(1, t))
	stops := [...][3]float64{
		{0.267, 0.005, 0.329},
		{0.283, 0.141, 0.458},
		{0.254, 0.265, 0.530},
		{0.164, 0.471, 0.558},
		{0.128, 0.567, 0.551},
		{0.266, 0.749, 0.441},
		{0.478, 0.821, 0.318},
		{0.993, 0.906, 0.144},
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		s := stops[len(stops)-1]
		return mplwgpu.RGB(float32(s[0]), float32(s[1]), float32(s[2]))
	}
	frac := float32(pos - float64(i))
	a, b := stops[i], stops[i+1]
	return mplwgpu.Lerp(
		mplwgpu.RGB(float32(a[0]), float32(a[1]), float32(a[2])),
		mplwgpu.RGB(float32(b[0]), float32(b[1]), float32(b[2])),
		frac)
}

// niceTicks returns round tick positions covering [lo, hi] with about n
// intervals.
func niceTicks(lo, hi float64, n int) []float64 {
	if n < 2 || hi <= lo {
		return nil
	}
	step := niceNum((hi-lo)/float64(n), true)
	start := math.Ceil(lo/step) * step
	var ticks []float64
	for t := start; t <= hi+step*1e-9; t += step {
		// Snap near-zero ticks produced by float drift.
		if math.Abs(t) < step*1e-9 {
			t = 0
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// niceNum rounds x to a 1/2/5 multiple of a power of ten.
func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	frac := x / math.Pow(10, exp)
	var nice float64
	if round {
		switch {
		case frac < 1.5:
			nice = 1
		case frac < 3:
			nice = 2
		case frac < 7:
			nice = 5
		default:
			nice = 10
		}
	} else {
		switch {
		case frac <= 1:
			nice = 1
		case frac <= 2:
			nice = 2
		case frac <= 5:
			nice = 5
		default:
			nice = 10
		}
	}
	return nice * math.Pow(10, exp)
}

// formatTick renders a tick value without trailing float noise.
func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

// quartiles returns the 25th, 50th and 75th percentiles by linear
// interpolation on the sorted data.
func quartiles(data []float64) (q1, q2, q3 float64) {
	s := make([]float64, len(data))
	copy(s, data)
	sort.Float64s(s)
	return percentile(s, 0.25), percentile(s, 0.5), percentile(s, 0.75)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	i := int(pos)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i]*(1-frac) + sorted[i+1]*frac
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
