// Package aste composes maps of fields on the six-face ASTE ocean grid.
package aste

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/domain"
)

// FaceArrays are the co-located arrays of one face selection.
type FaceArrays struct {
	Face  int
	Lon   *mat.Dense
	Lat   *mat.Dense
	Depth *mat.Dense
	Data  *mat.Dense
}

// Dims returns the shared shape of the arrays.
func (f FaceArrays) Dims() (rows, cols int) { return f.Data.Dims() }

// Extract selects longitude, latitude, depth and field on face, all sliced
// by sel. Arrays that disagree in shape yield a *domain.ShapeMismatchError.
func Extract(ds domain.Dataset, field string, face int, sel domain.Selection) (FaceArrays, error) {
	names := [4]string{domain.VarLon, domain.VarLat, domain.VarDepth, field}
	var arrays [4]*mat.Dense
	for k, name := range names {
		m, err := ds.Select(name, face, sel)
		if err != nil {
			return FaceArrays{}, fmt.Errorf("face %d: select %s%s: %w", face, name, sel, err)
		}
		arrays[k] = m
	}

	shapes := make([]domain.NamedShape, len(names))
	mismatch := false
	for k, m := range arrays {
		r, c := m.Dims()
		shapes[k] = domain.NamedShape{Name: names[k], Rows: r, Cols: c}
		if r != shapes[0].Rows || c != shapes[0].Cols {
			mismatch = true
		}
	}
	if mismatch {
		return FaceArrays{}, &domain.ShapeMismatchError{Face: face, Shapes: shapes}
	}

	return FaceArrays{
		Face:  face,
		Lon:   arrays[0],
		Lat:   arrays[1],
		Depth: arrays[2],
		Data:  arrays[3],
	}, nil
}
