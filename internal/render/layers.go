package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LandFeature paints the masked cells of every mesh on its axes.
type LandFeature struct {
	Color color.Color
	axes  *Axes
}

// Land returns the land feature in the usual light gray.
func Land() *LandFeature {
	return &LandFeature{Color: color.Gray{Y: 191}}
}

// Plot implements plot.Plotter.
func (l *LandFeature) Plot(c draw.Canvas, plt *plot.Plot) {
	if l.axes == nil {
		return
	}
	trX, trY := plt.Transforms(&c)
	pts := make([]vg.Point, 4)
	for _, m := range l.axes.meshes {
		for _, cell := range m.masked {
			fillCell(c, trX, trY, cell.poly, l.Color, pts)
		}
	}
}

// Graticule draws meridians and parallels.
type Graticule struct {
	LonStep, LatStep float64
	LineStyle        draw.LineStyle
	proj             Projection
}

// NewGraticule returns thin gray lines every 30 degrees of longitude and
// 15 degrees of latitude.
func NewGraticule(p Projection) *Graticule {
	return &Graticule{
		LonStep: 30,
		LatStep: 15,
		LineStyle: draw.LineStyle{
			Color:  color.Gray{Y: 128},
			Width:  vg.Points(0.5),
			Dashes: []vg.Length{vg.Points(2), vg.Points(2)},
		},
		proj: p,
	}
}

// Lines returns the projected graticule as polylines, split where they
// leave the visible part of the globe.
func (g *Graticule) Lines() [][][2]float64 {
	var out [][][2]float64
	trace := func(n int, at func(k int) (lon, lat float64)) {
		var cur [][2]float64
		for k := 0; k <= n; k++ {
			x, y, ok := g.proj.Forward(at(k))
			if ok && len(cur) > 0 {
				// Break at projection seams.
				last := cur[len(cur)-1]
				xmin, xmax, _, _ := g.proj.Extent()
				if math.Abs(x-last[0]) > (xmax-xmin)/2 {
					ok = false
				}
			}
			if !ok {
				if len(cur) > 1 {
					out = append(out, cur)
				}
				cur = nil
				if x, y, ok := g.proj.Forward(at(k)); ok {
					cur = append(cur, [2]float64{x, y})
				}
				continue
			}
			cur = append(cur, [2]float64{x, y})
		}
		if len(cur) > 1 {
			out = append(out, cur)
		}
	}
	for lon := -180.0; lon < 180; lon += g.LonStep {
		trace(180, func(k int) (float64, float64) { return lon, -90 + float64(k) })
	}
	for lat := -90 + g.LatStep; lat < 90; lat += g.LatStep {
		trace(360, func(k int) (float64, float64) { return -180 + float64(k), lat })
	}
	return out
}

// Plot implements plot.Plotter.
func (g *Graticule) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, line := range g.Lines() {
		pts := make([]vg.Point, len(line))
		for k, p := range line {
			pts[k] = vg.Point{X: trX(p[0]), Y: trY(p[1])}
		}
		c.StrokeLines(g.LineStyle, c.ClipLinesXY(pts)...)
	}
}

// outline strokes the boundary of the projected globe.
type outline struct {
	proj      Projection
	LineStyle draw.LineStyle
}

func (o *outline) Plot(c draw.Canvas, plt *plot.Plot) {
	ring := o.proj.Outline()
	if len(ring) < 2 {
		return
	}
	trX, trY := plt.Transforms(&c)
	pts := make([]vg.Point, len(ring))
	for k, p := range ring {
		pts[k] = vg.Point{X: trX(p[0]), Y: trY(p[1])}
	}
	c.StrokeLines(o.LineStyle, pts)
}
