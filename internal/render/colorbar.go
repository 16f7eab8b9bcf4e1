package render

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultShrink is the colorbar length relative to the map height.
const DefaultShrink = 0.75

// Colorbar shows the colormap and norm of a mesh.
type Colorbar struct {
	Shrink float64
	norm   Norm
	cmap   palette.ColorMap
	ticks  []plot.Tick
}

// NewColorbar returns a vertical colorbar for m. Explicit ticks are labelled
// with labels, which must pair with them one to one. Without ticks the
// default ticks of the norm range are used.
func NewColorbar(m *Mesh, ticks []float64, labels []string) (*Colorbar, error) {
	if m == nil {
		return nil, errors.New("colorbar: nil mesh")
	}
	cb := &Colorbar{Shrink: DefaultShrink, norm: m.norm, cmap: m.cmap}
	if len(ticks) == 0 {
		if len(labels) > 0 {
			return nil, errors.New("colorbar: labels given without ticks")
		}
		for _, t := range (plot.DefaultTicks{}).Ticks(m.norm.VMin, m.norm.VMax) {
			if t.Label != "" {
				cb.ticks = append(cb.ticks, t)
			}
		}
		return cb, nil
	}
	if len(labels) != len(ticks) {
		return nil, fmt.Errorf("colorbar: %d labels for %d ticks", len(labels), len(ticks))
	}
	cb.ticks = make([]plot.Tick, len(ticks))
	for k, v := range ticks {
		cb.ticks[k] = plot.Tick{Value: v, Label: labels[k]}
	}
	return cb, nil
}

// Ticks returns the labelled ticks in order.
func (cb *Colorbar) Ticks() []plot.Tick {
	return append([]plot.Tick(nil), cb.ticks...)
}

func (cb *Colorbar) draw(c draw.Canvas) {
	plt := plot.New()
	plt.HideX()
	plt.Add(&plotter.ColorBar{ColorMap: cb.cmap, Vertical: true})
	plt.Y.Min, plt.Y.Max = cb.norm.VMin, cb.norm.VMax
	plt.Y.Tick.Marker = plot.ConstantTicks(cb.ticks)
	plt.Draw(c)
}
