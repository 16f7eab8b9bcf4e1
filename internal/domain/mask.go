package domain

import "gonum.org/v1/gonum/mat"

// Mask is a boolean array indexed like the face arrays.
type Mask struct {
	rows, cols int
	bits       []bool
}

// NewMask returns an all-false rows x cols mask.
func NewMask(rows, cols int) Mask {
	return Mask{rows: rows, cols: cols, bits: make([]bool, rows*cols)}
}

// Dims returns the mask shape.
func (m Mask) Dims() (rows, cols int) { return m.rows, m.cols }

// At reports whether (i, j) is masked. Out of range indices are unmasked.
func (m Mask) At(i, j int) bool {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return false
	}
	return m.bits[i*m.cols+j]
}

// Set marks (i, j).
func (m Mask) Set(i, j int, v bool) {
	m.bits[i*m.cols+j] = v
}

// Count returns the number of masked entries.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Equal reports whether m and o have the same shape and entries.
func (m Mask) Equal(o Mask) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for k := range m.bits {
		if m.bits[k] != o.bits[k] {
			return false
		}
	}
	return true
}

// ValueMask returns a mask that is true wherever a equals v.
func ValueMask(a mat.Matrix, v float64) Mask {
	rows, cols := a.Dims()
	m := NewMask(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if a.At(i, j) == v {
				m.bits[i*cols+j] = true
			}
		}
	}
	return m
}

// LandMask marks the cells whose depth is zero, the grid's land value.
func LandMask(depth mat.Matrix) Mask {
	return ValueMask(depth, 0)
}
