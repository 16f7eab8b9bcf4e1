// Package synth generates ASTE shaped test data: a six-face dataset with
// zero coordinate placeholders on the gap filled faces, and the facet grid
// files that go with it.
package synth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/domain"
)

// DefaultField is the data variable written by Dataset.
const DefaultField = "THETA"

// Options controls the generated grid.
type Options struct {
	Rows, Cols int     // cells per face, i by j
	Step       float64 // degrees between neighbouring cells
	Hole       int     // side of the zero placeholder block on faces 1, 2 and 4
	Land       int     // rows and columns of land along the low edges
	Field      string
}

// Default returns options matching the ASTE 270 face selections.
func Default() Options {
	return Options{Rows: 270, Cols: 270, Step: 0.1, Hole: 12, Land: 4, Field: DefaultField}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Rows < 2 || o.Cols < 2 {
		return fmt.Errorf("faces must be at least 2x2, got %dx%d", o.Rows, o.Cols)
	}
	if o.Step <= 0 {
		return fmt.Errorf("step must be positive, got %g", o.Step)
	}
	if o.Hole < 0 || o.Land < 0 {
		return fmt.Errorf("hole and land sizes must not be negative")
	}
	if o.Field == "" {
		return fmt.Errorf("field name is required")
	}
	return nil
}

// Coords returns the true cell centre coordinates of face. Faces are laid
// out side by side around the orthographic map centre.
func (o Options) Coords(face int) (lon, lat *mat.Dense) {
	lon = mat.NewDense(o.Rows, o.Cols, nil)
	lat = mat.NewDense(o.Rows, o.Cols, nil)
	lon0 := -80 + 12*float64(face)
	lat0 := 5 + 6*float64(face)
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			lon.Set(i, j, lon0+o.Step*float64(i))
			lat.Set(i, j, math.Min(lat0+o.Step*float64(j), 89))
		}
	}
	return lon, lat
}

// HasHoles reports whether face carries coordinate placeholders.
func HasHoles(face int) bool {
	return face == 1 || face == 2 || face == 4
}

// Dataset builds the six-face dataset described by o.
func Dataset(o Options) (*domain.MemDataset, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	ds := domain.NewMemDataset("aste270-synthetic", 6)
	for face := 0; face < 6; face++ {
		lon, lat := o.Coords(face)
		depth := mat.NewDense(o.Rows, o.Cols, nil)
		data := mat.NewDense(o.Rows, o.Cols, nil)
		for i := 0; i < o.Rows; i++ {
			for j := 0; j < o.Cols; j++ {
				if i >= o.Land && j >= o.Land {
					depth.Set(i, j, 4000-10*float64(i%50))
				}
				x, y := lon.At(i, j), lat.At(i, j)
				data.Set(i, j, 15+10*math.Cos(y*math.Pi/180)*math.Sin(x*math.Pi/60))
			}
		}
		if HasHoles(face) {
			i0, j0 := o.Rows/3, o.Cols/3
			for i := i0; i < i0+o.Hole && i < o.Rows; i++ {
				for j := j0; j < j0+o.Hole && j < o.Cols; j++ {
					lon.Set(i, j, 0)
					lat.Set(i, j, 0)
				}
			}
		}
		for name, m := range map[string]*mat.Dense{
			domain.VarLon:   lon,
			domain.VarLat:   lat,
			domain.VarDepth: depth,
			o.Field:         data,
		} {
			if err := ds.Set(name, face, m); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}
