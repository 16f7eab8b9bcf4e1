// Package gapfill fills missing values of a 2-D field by solving Poisson's
// equation over the missing points with successive relaxation.
package gapfill

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/domain"
)

// ErrNoValidPoints is returned when every entry of the field is missing.
var ErrNoValidPoints = errors.New("gapfill: field has no valid points")

// Relaxation holds the solver parameters.
//
// Axis 0 (rows) is the x axis; Cyclic makes it periodic. Edges that are not
// periodic are reflective.
type Relaxation struct {
	Eps       float64 // tolerance on the largest residual
	Relax     float64 // relaxation factor in (0, 2)
	IterMax   int
	InitZonal bool // start from the mean of valid values along x
	Cyclic    bool
}

// Default returns the parameters used for ASTE coordinate arrays.
func Default() Relaxation {
	return Relaxation{
		Eps:     1e-2,
		Relax:   0.6,
		IterMax: 10000,
	}
}

// Validate checks the parameters.
func (r Relaxation) Validate() error {
	switch {
	case !(r.Eps > 0):
		return fmt.Errorf("gapfill: eps must be positive, got %g", r.Eps)
	case !(r.Relax > 0 && r.Relax < 2):
		return fmt.Errorf("gapfill: relaxation factor must be in (0, 2), got %g", r.Relax)
	case r.IterMax < 1:
		return fmt.Errorf("gapfill: itermax must be at least 1, got %d", r.IterMax)
	}
	return nil
}

// Result is the outcome of a fill.
type Result struct {
	Values     *mat.Dense
	Converged  bool
	Iterations int
	Residual   float64 // largest residual of the last sweep
}

// FillZeros fills the entries of values that equal zero, the placeholder
// used by the grid for absent coordinates.
func (r Relaxation) FillZeros(values *mat.Dense) (Result, error) {
	if values == nil {
		return Result{}, errors.New("gapfill: nil field")
	}
	return r.Fill(values, domain.ValueMask(values, 0))
}

// Fill replaces the entries of values marked in missing. The input is not
// modified.
//
// Running out of iterations is not an error: the result is returned with
// Converged set to false.
func (r Relaxation) Fill(values *mat.Dense, missing domain.Mask) (Result, error) {
	if values == nil {
		return Result{}, errors.New("gapfill: nil field")
	}
	if err := r.Validate(); err != nil {
		return Result{}, err
	}
	rows, cols := values.Dims()
	if mr, mc := missing.Dims(); mr != rows || mc != cols {
		return Result{}, fmt.Errorf("gapfill: mask shape (%d,%d) does not match field (%d,%d)", mr, mc, rows, cols)
	}

	out := mat.DenseCopyOf(values)
	holes := make([][2]int, 0, missing.Count())
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if missing.At(i, j) {
				holes = append(holes, [2]int{i, j})
			}
		}
	}
	if len(holes) == 0 {
		return Result{Values: out, Converged: true}, nil
	}
	if len(holes) == rows*cols {
		return Result{}, ErrNoValidPoints
	}

	r.initialGuess(out, missing)

	var res float64
	for it := 1; it <= r.IterMax; it++ {
		res = 0
		for _, h := range holes {
			i, j := h[0], h[1]
			v := out.At(i, j)
			avg := 0.25 * (out.At(r.wrapRow(i-1, rows), j) +
				out.At(r.wrapRow(i+1, rows), j) +
				out.At(i, reflect(j-1, cols)) +
				out.At(i, reflect(j+1, cols)))
			d := avg - v
			out.Set(i, j, v+r.Relax*d)
			if a := math.Abs(d); a > res {
				res = a
			}
		}
		if res < r.Eps {
			return Result{Values: out, Converged: true, Iterations: it, Residual: res}, nil
		}
	}
	return Result{Values: out, Iterations: r.IterMax, Residual: res}, nil
}

// initialGuess seeds the missing points with zero, or with the mean of the
// valid values of the same column when InitZonal is set.
func (r Relaxation) initialGuess(out *mat.Dense, missing domain.Mask) {
	rows, cols := out.Dims()
	col := make([]float64, 0, rows)
	for j := 0; j < cols; j++ {
		guess := 0.0
		if r.InitZonal {
			col = col[:0]
			for i := 0; i < rows; i++ {
				if !missing.At(i, j) {
					col = append(col, out.At(i, j))
				}
			}
			if len(col) > 0 {
				guess = floats.Sum(col) / float64(len(col))
			}
		}
		for i := 0; i < rows; i++ {
			if missing.At(i, j) {
				out.Set(i, j, guess)
			}
		}
	}
}

func (r Relaxation) wrapRow(i, n int) int {
	if r.Cyclic {
		return (i%n + n) % n
	}
	return reflect(i, n)
}

// reflect mirrors an index that steps off either end of [0, n).
func reflect(k, n int) int {
	if n == 1 {
		return 0
	}
	if k < 0 {
		return -k
	}
	if k >= n {
		return 2*(n-1) - k
	}
	return k
}
