// Package domain holds the grid, dataset and configuration types shared by
// the ASTE rendering pipelines.
package domain

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Coordinate variable names of an xmitgcm-style dataset.
const (
	VarLon   = "XC"
	VarLat   = "YC"
	VarDepth = "Depth"
)

// Dataset is a multi-face gridded dataset.
//
// Arrays returned by Select use rows for the local i axis and columns for
// the local j axis. All variables of one face share that index space.
type Dataset interface {
	// Name returns the dataset name.
	Name() string

	// Fields returns the variable names available in the dataset.
	Fields() []string

	// NumFaces returns the number of faces.
	NumFaces() int

	// Select returns a copy of variable on face restricted to sel.
	Select(variable string, face int, sel Selection) (*mat.Dense, error)
}

// Span is a half-open index range [Start, Stop).
type Span struct {
	Start, Stop int
}

// Range returns a span covering [start, stop).
func Range(start, stop int) *Span {
	return &Span{Start: start, Stop: stop}
}

// clip intersects s with [0, n). A nil span selects everything.
func (s *Span) clip(n int) (lo, hi int) {
	if s == nil {
		return 0, n
	}
	lo, hi = s.Start, s.Stop
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func (s *Span) String() string {
	if s == nil {
		return ":"
	}
	return fmt.Sprintf("%d:%d", s.Start, s.Stop)
}

// Selection restricts the two local axes of a face. Nil spans select the
// whole axis.
type Selection struct {
	I *Span
	J *Span
}

// Bounds intersects sel with a rows x cols face.
func (sel Selection) Bounds(rows, cols int) (r0, r1, c0, c1 int) {
	r0, r1 = sel.I.clip(rows)
	c0, c1 = sel.J.clip(cols)
	return r0, r1, c0, c1
}

func (sel Selection) String() string {
	return fmt.Sprintf("[i=%s, j=%s]", sel.I, sel.J)
}

// SliceFace returns a copy of m restricted to sel.
func SliceFace(m *mat.Dense, sel Selection) (*mat.Dense, error) {
	rows, cols := m.Dims()
	r0, r1, c0, c1 := sel.Bounds(rows, cols)
	if r1 == r0 || c1 == c0 {
		return nil, fmt.Errorf("%w: %s of %dx%d face", ErrEmptySelection, sel, rows, cols)
	}
	return mat.DenseCopyOf(m.Slice(r0, r1, c0, c1)), nil
}

// MemDataset is an in-memory Dataset.
type MemDataset struct {
	name  string
	faces int
	vars  map[string][]*mat.Dense
}

// NewMemDataset creates an empty dataset with the given number of faces.
func NewMemDataset(name string, faces int) *MemDataset {
	return &MemDataset{
		name:  name,
		faces: faces,
		vars:  make(map[string][]*mat.Dense),
	}
}

// Set stores the array of variable on face.
func (d *MemDataset) Set(variable string, face int, m *mat.Dense) error {
	if face < 0 || face >= d.faces {
		return fmt.Errorf("%w: %d (dataset has %d faces)", ErrFaceOutOfRange, face, d.faces)
	}
	if d.vars[variable] == nil {
		d.vars[variable] = make([]*mat.Dense, d.faces)
	}
	d.vars[variable][face] = m
	return nil
}

func (d *MemDataset) Name() string  { return d.name }
func (d *MemDataset) NumFaces() int { return d.faces }

// Fields returns the data variables, excluding the coordinates.
func (d *MemDataset) Fields() []string {
	names := make([]string, 0, len(d.vars))
	for name := range d.vars {
		switch name {
		case VarLon, VarLat, VarDepth:
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *MemDataset) Select(variable string, face int, sel Selection) (*mat.Dense, error) {
	faces, ok := d.vars[variable]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, variable)
	}
	if face < 0 || face >= d.faces {
		return nil, fmt.Errorf("%w: %d (dataset has %d faces)", ErrFaceOutOfRange, face, d.faces)
	}
	m := faces[face]
	if m == nil {
		return nil, fmt.Errorf("%w: %s has no data on face %d", ErrUnknownField, variable, face)
	}
	return SliceFace(m, sel)
}
