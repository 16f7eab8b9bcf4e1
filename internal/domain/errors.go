package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by dataset selection.
var (
	ErrUnknownField    = errors.New("unknown field")
	ErrFaceOutOfRange  = errors.New("face index out of range")
	ErrEmptySelection  = errors.New("selection is empty")
	ErrMissingFacetMap = errors.New("facet grid has no source index mapping")
)

// ConfigurationError reports a missing or invalid plot configuration key.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("plot config %q: %s", e.Key, e.Reason)
}

// NamedShape is the shape of one array taking part in a shape check.
type NamedShape struct {
	Name       string
	Rows, Cols int
}

func (s NamedShape) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Name, s.Rows, s.Cols)
}

// ShapeMismatchError reports co-located arrays that disagree in shape.
type ShapeMismatchError struct {
	Face   int
	Shapes []NamedShape
}

func (e *ShapeMismatchError) Error() string {
	parts := make([]string, len(e.Shapes))
	for i, s := range e.Shapes {
		parts[i] = s.String()
	}
	return fmt.Sprintf("face %d: shape mismatch: %s", e.Face, strings.Join(parts, " "))
}

// NonConvergenceError reports a gap fill that ran out of iterations
// before meeting its tolerance.
type NonConvergenceError struct {
	Face       int
	Coordinate string
	Iterations int
	Residual   float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("face %d: gap fill of %s did not converge after %d iterations (residual %.3g)",
		e.Face, e.Coordinate, e.Iterations, e.Residual)
}

// RenderError wraps a failure inside the drawing layer.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
