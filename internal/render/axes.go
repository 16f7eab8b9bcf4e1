package render

import (
	"errors"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Axes is a map panel. Layers are drawn in the order they are added.
type Axes struct {
	Projection Projection

	layers    []plot.Plotter
	land      *LandFeature
	gridlines *Graticule
	meshes    []*Mesh
	global    bool
}

// NewAxes returns empty axes drawing under p.
func NewAxes(p Projection) (*Axes, error) {
	if p == nil {
		return nil, errors.New("axes: nil projection")
	}
	return &Axes{Projection: p}, nil
}

// AddFeature adds the land layer. Only the first call has an effect.
func (a *Axes) AddFeature(l *LandFeature) {
	if a.land != nil || l == nil {
		return
	}
	l.axes = a
	a.land = l
	a.layers = append(a.layers, l)
}

// Land returns the land layer, or nil.
func (a *Axes) Land() *LandFeature { return a.land }

// SetGlobal makes the axes show the whole projected globe instead of the
// extent of the drawn meshes.
func (a *Axes) SetGlobal() { a.global = true }

// Global reports whether SetGlobal was called.
func (a *Axes) Global() bool { return a.global }

// AddGridlines draws a graticule above the meshes added so far. Gridlines
// carry no labels.
func (a *Axes) AddGridlines() *Graticule {
	g := NewGraticule(a.Projection)
	a.gridlines = g
	a.layers = append(a.layers, g)
	return g
}

// Gridlines returns the graticule, or nil.
func (a *Axes) Gridlines() *Graticule { return a.gridlines }

// PColorMesh draws c on the quadrilateral mesh with nodes lon/lat. Cells
// marked in mask are left to the land layer.
func (a *Axes) PColorMesh(lon, lat, c mat.Matrix, mask Mask, norm Norm, cmap palette.ColorMap) (*Mesh, error) {
	m, err := NewMesh(a.Projection, lon, lat, c, mask, norm, cmap)
	if err != nil {
		return nil, err
	}
	a.meshes = append(a.meshes, m)
	a.layers = append(a.layers, m)
	return m, nil
}

// Meshes returns the meshes drawn so far.
func (a *Axes) Meshes() []*Mesh { return a.meshes }

// Extent returns the planar region shown by the axes.
func (a *Axes) Extent() (xmin, xmax, ymin, ymax float64) {
	if a.global {
		return a.Projection.Extent()
	}
	first := true
	for _, m := range a.meshes {
		if m.Empty() {
			continue
		}
		b := m.Bounds()
		if first {
			xmin, xmax, ymin, ymax = b.Min.X, b.Max.X, b.Min.Y, b.Max.Y
			first = false
			continue
		}
		xmin = min(xmin, b.Min.X)
		xmax = max(xmax, b.Max.X)
		ymin = min(ymin, b.Min.Y)
		ymax = max(ymax, b.Max.Y)
	}
	if first {
		return a.Projection.Extent()
	}
	return xmin, xmax, ymin, ymax
}

// draw renders the axes into c, keeping one map unit the same length on
// both axes.
func (a *Axes) draw(c draw.Canvas, title string) {
	xmin, xmax, ymin, ymax := a.Extent()
	plt := plot.New()
	plt.HideAxes()
	plt.Add(a.layers...)
	if a.global {
		plt.Add(&outline{proj: a.Projection, LineStyle: draw.LineStyle{Color: color.Black, Width: vg.Points(0.75)}})
	}
	plt.X.Min, plt.X.Max = xmin, xmax
	plt.Y.Min, plt.Y.Max = ymin, ymax
	plt.Title.Text = title

	var titleH vg.Length
	if title != "" {
		titleH = plt.Title.TextStyle.Height(title) + plt.Title.Padding
	}
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y - titleH
	if w > 0 && h > 0 && xmax > xmin && ymax > ymin {
		aspect := (xmax - xmin) / (ymax - ymin)
		if float64(w)/float64(h) > aspect {
			pad := (w - vg.Length(aspect)*h) / 2
			c = draw.Crop(c, pad, -pad, 0, 0)
		} else {
			pad := (h - w/vg.Length(aspect)) / 2
			c = draw.Crop(c, 0, 0, pad, -pad)
		}
	}
	plt.Draw(c)
}
