package aste

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/palette"

	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/render"
)

// PlotFace draws one face mesh on ax with the shared norm and colormap.
// Cells marked in mask are left to the land layer.
func PlotFace(ax *render.Axes, lon, lat, data mat.Matrix, mask render.Mask, norm render.Norm, cmap palette.ColorMap) (*render.Mesh, error) {
	m, err := ax.PColorMesh(lon, lat, data, mask, norm, cmap)
	if err != nil {
		return nil, &domain.RenderError{Op: "pcolormesh", Err: err}
	}
	return m, nil
}
