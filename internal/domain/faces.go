package domain

import "path/filepath"

// FaceRule describes how one face takes part in a composite map.
type FaceRule struct {
	Face    int
	Sel     Selection
	GapFill bool // fill zero coordinate placeholders before drawing
}

// GridLayout is the ordered list of faces drawn for a grid configuration.
// The colorbar is attached after the last entry.
type GridLayout []FaceRule

// Faces returns the face indices in draw order.
func (l GridLayout) Faces() []int {
	out := make([]int, len(l))
	for k, r := range l {
		out[k] = r.Face
	}
	return out
}

// ASTE270 is the face table of the 270-point ASTE configuration.
//
// Faces 1, 2 and 4 are used whole and carry zero placeholders outside their
// footprint. Faces 3 and 5 are limited along i, face 0 along j.
var ASTE270 = GridLayout{
	{Face: 1, GapFill: true},
	{Face: 2, GapFill: true},
	{Face: 4, GapFill: true},
	{Face: 3, Sel: Selection{I: Range(0, 125)}},
	{Face: 5, Sel: Selection{I: Range(0, 155)}},
	{Face: 0, Sel: Selection{J: Range(115, 270)}},
}

// Default facet grid file names.
const (
	Facet1File = "ASTE_FACET1.nc"
	Facet3File = "ASTE_FACET3.nc"
	Facet4File = "ASTE_FACET4.nc"
	Facet5File = "ASTE_FACET5.nc"
)

// FacetPaths locates the four facet grid definition files.
type FacetPaths struct {
	Facet1 string
	Facet3 string
	Facet4 string
	Facet5 string
}

// DefaultFacetPaths resolves the default facet file names against dir.
func DefaultFacetPaths(dir string) FacetPaths {
	return FacetPaths{
		Facet1: filepath.Join(dir, Facet1File),
		Facet3: filepath.Join(dir, Facet3File),
		Facet4: filepath.Join(dir, Facet4File),
		Facet5: filepath.Join(dir, Facet5File),
	}
}
