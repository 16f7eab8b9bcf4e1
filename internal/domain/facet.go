package domain

import "gonum.org/v1/gonum/mat"

// Names of the assembled facet grids.
const (
	GridAC  = "AC"
	GridPAC = "PAC"
	GridARC = "ARC"
)

// CellIndex points at a cell of the multi-face source grid. A negative Face
// marks a cell with no source.
type CellIndex struct {
	Face, I, J int
}

// FacetGrid is a structured sub-grid assembled from facet files.
type FacetGrid struct {
	Name   string
	XC, YC *mat.Dense
	// Source holds one entry per cell in row-major order.
	Source []CellIndex
}

// Dims returns the grid shape.
func (g *FacetGrid) Dims() (rows, cols int) { return g.XC.Dims() }

// SourceAt returns the source cell of (i, j).
func (g *FacetGrid) SourceAt(i, j int) CellIndex {
	_, cols := g.Dims()
	return g.Source[i*cols+j]
}

// RegriddedField is a field remapped onto a facet grid. It carries the
// variable name of the source field plus XC and YC.
type RegriddedField struct {
	Grid     string
	Variable string
	XC, YC   *mat.Dense
	Values   *mat.Dense
}
