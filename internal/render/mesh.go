package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Mask marks cells excluded from colouring.
type Mask interface {
	Dims() (rows, cols int)
	At(i, j int) bool
}

// Mesh is a quadrilateral mesh drawn in flat shading: the cell spanning
// nodes (i, j) to (i+1, j+1) takes the value at (i, j), so the last row and
// column of values are not drawn.
//
// Mesh implements plot.Plotter and plot.DataRanger.
type Mesh struct {
	lon, lat *mat.Dense
	cells    []meshCell
	masked   []meshCell
	bounds   *geom.Bounds
	norm     Norm
	cmap     palette.ColorMap
}

type meshCell struct {
	poly  geom.Polygon
	value float64
}

// NewMesh projects the nodes lon/lat and builds the cells of c. Cells with
// an invisible corner, a NaN value or no area are dropped. Masked cells are
// kept apart for the land layer.
func NewMesh(p Projection, lon, lat, c mat.Matrix, mask Mask, norm Norm, cmap palette.ColorMap) (*Mesh, error) {
	if p == nil {
		return nil, errors.New("mesh: nil projection")
	}
	if cmap == nil {
		return nil, errors.New("mesh: nil colormap")
	}
	if err := norm.Validate(); err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	rows, cols := lon.Dims()
	if r, k := lat.Dims(); r != rows || k != cols {
		return nil, fmt.Errorf("mesh: lat shape (%d,%d) does not match lon (%d,%d)", r, k, rows, cols)
	}
	if r, k := c.Dims(); r != rows || k != cols {
		return nil, fmt.Errorf("mesh: value shape (%d,%d) does not match lon (%d,%d)", r, k, rows, cols)
	}
	if mask != nil {
		if r, k := mask.Dims(); r != rows || k != cols {
			return nil, fmt.Errorf("mesh: mask shape (%d,%d) does not match lon (%d,%d)", r, k, rows, cols)
		}
	}
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("mesh: need at least 2x2 nodes, got %dx%d", rows, cols)
	}
	norm.Apply(cmap)

	xs := make([]geom.Point, rows*cols)
	vis := make([]bool, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x, y, ok := p.Forward(lon.At(i, j), lat.At(i, j))
			xs[i*cols+j] = geom.Point{X: x, Y: y}
			vis[i*cols+j] = ok
		}
	}

	xmin, xmax, ymin, ymax := p.Extent()
	maxSpan := (xmax - xmin) / 2
	minArea := 1e-12 * (xmax - xmin) * (ymax - ymin)

	m := &Mesh{
		lon:    mat.DenseCopyOf(lon),
		lat:    mat.DenseCopyOf(lat),
		bounds: geom.NewBounds(),
		norm:   norm,
		cmap:   cmap,
	}
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			corners := [4]int{i*cols + j, (i+1)*cols + j, (i+1)*cols + j + 1, i*cols + j + 1}
			if !vis[corners[0]] || !vis[corners[1]] || !vis[corners[2]] || !vis[corners[3]] {
				continue
			}
			ring := geom.Path{xs[corners[0]], xs[corners[1]], xs[corners[2]], xs[corners[3]], xs[corners[0]]}
			poly := geom.Polygon{ring}
			b := poly.Bounds()
			// Cells torn across a projection seam.
			if b.Max.X-b.Min.X > maxSpan {
				continue
			}
			if math.Abs(poly.Area()) <= minArea {
				continue
			}
			cell := meshCell{poly: poly, value: c.At(i, j)}
			if mask != nil && mask.At(i, j) {
				m.masked = append(m.masked, cell)
				m.bounds.Extend(b)
				continue
			}
			if math.IsNaN(cell.value) {
				continue
			}
			m.cells = append(m.cells, cell)
			m.bounds.Extend(b)
		}
	}
	return m, nil
}

// NumCells returns the number of coloured cells.
func (m *Mesh) NumCells() int { return len(m.cells) }

// NumMasked returns the number of masked cells.
func (m *Mesh) NumMasked() int { return len(m.masked) }

// Nodes returns the longitude and latitude nodes of the mesh.
func (m *Mesh) Nodes() (lon, lat *mat.Dense) { return m.lon, m.lat }

// Bounds returns the planar bounds of all drawn cells.
func (m *Mesh) Bounds() *geom.Bounds { return m.bounds }

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool { return len(m.cells) == 0 && len(m.masked) == 0 }

// Plot implements plot.Plotter.
func (m *Mesh) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pts := make([]vg.Point, 4)
	for _, cell := range m.cells {
		clr, err := m.norm.colorOf(m.cmap, cell.value)
		if err != nil {
			continue
		}
		fillCell(c, trX, trY, cell.poly, clr, pts)
	}
}

// DataRange implements plot.DataRanger.
func (m *Mesh) DataRange() (xmin, xmax, ymin, ymax float64) {
	if m.Empty() {
		return 0, 0, 0, 0
	}
	return m.bounds.Min.X, m.bounds.Max.X, m.bounds.Min.Y, m.bounds.Max.Y
}

func fillCell(c draw.Canvas, trX, trY func(float64) vg.Length, poly geom.Polygon, clr color.Color, pts []vg.Point) {
	ring := poly[0]
	for k := 0; k < 4; k++ {
		pts[k] = vg.Point{X: trX(ring[k].X), Y: trY(ring[k].Y)}
	}
	c.FillPolygon(clr, pts)
}
