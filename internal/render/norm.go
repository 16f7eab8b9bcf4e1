package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// Norm maps data values linearly onto a colormap range. Values outside
// [VMin, VMax] take the colour of the nearest bound.
type Norm struct {
	VMin, VMax float64
}

// Validate checks that the range is finite and not empty.
func (n Norm) Validate() error {
	if math.IsNaN(n.VMin) || math.IsNaN(n.VMax) || math.IsInf(n.VMin, 0) || math.IsInf(n.VMax, 0) {
		return fmt.Errorf("norm: non-finite range [%g, %g]", n.VMin, n.VMax)
	}
	if !(n.VMin < n.VMax) {
		return fmt.Errorf("norm: vmin %g must be less than vmax %g", n.VMin, n.VMax)
	}
	return nil
}

// Clamp limits v to [VMin, VMax].
func (n Norm) Clamp(v float64) float64 {
	return math.Max(n.VMin, math.Min(n.VMax, v))
}

// Apply sets the range of cm to the norm.
func (n Norm) Apply(cm palette.ColorMap) {
	// Keep min <= max at every step.
	if n.VMin > cm.Max() {
		cm.SetMax(n.VMax)
		cm.SetMin(n.VMin)
		return
	}
	cm.SetMin(n.VMin)
	cm.SetMax(n.VMax)
}

// colorOf looks up v, which must not be NaN, in a colormap ranged by Apply.
func (n Norm) colorOf(cm palette.ColorMap, v float64) (color.Color, error) {
	return cm.At(n.Clamp(v))
}
