package aste

import (
	"errors"
	"fmt"

	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/render"
)

// PlotASTEWithGrids regrids field onto the AC, PAC and ARC facet grids and
// draws the AC grid on a global map. PAC and ARC are built and regridded but
// not drawn. Land on the AC grid comes from the regridded depth.
func (c *Compositor) PlotASTEWithGrids(ds domain.Dataset, field string, cfg domain.PlotConfig, paths domain.FacetPaths) (*render.Figure, error) {
	if ds == nil {
		return nil, errors.New("plot ASTE with grids: nil dataset")
	}
	if c.Assembler == nil || c.Regridder == nil {
		return nil, errors.New("plot ASTE with grids: facet assembler and regridder are required")
	}
	cmap, proj, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	fig, ax, err := newMap(cfg, proj)
	if err != nil {
		return nil, err
	}

	builders := []struct {
		name  string
		build func(domain.FacetPaths) (*domain.FacetGrid, error)
	}{
		{domain.GridAC, c.Assembler.BuildAC},
		{domain.GridPAC, c.Assembler.BuildPAC},
		{domain.GridARC, c.Assembler.BuildARC},
	}
	grids := make([]*domain.FacetGrid, len(builders))
	for k, b := range builders {
		g, err := b.build(paths)
		if err != nil {
			return nil, fmt.Errorf("build %s grid: %w", b.name, err)
		}
		grids[k] = g
	}
	regridded := make([]*domain.RegriddedField, len(grids))
	for k, g := range grids {
		r, err := c.Regridder.Regrid(ds, field, g)
		if err != nil {
			return nil, fmt.Errorf("regrid %s onto %s: %w", field, builders[k].name, err)
		}
		regridded[k] = r
		rows, cols := r.Values.Dims()
		c.Logger.Debug().Str("grid", builders[k].name).Int("rows", rows).Int("cols", cols).Msg("field regridded")
	}

	ac := regridded[0]
	depth, err := c.Regridder.Regrid(ds, domain.VarDepth, grids[0])
	if err != nil {
		return nil, fmt.Errorf("regrid %s onto %s: %w", domain.VarDepth, domain.GridAC, err)
	}
	mask := domain.LandMask(depth.Values)

	ax.SetGlobal()
	norm := render.Norm{VMin: cfg.VMin, VMax: cfg.VMax}
	if _, err := PlotFace(ax, ac.XC, ac.YC, ac.Values, mask, norm, cmap); err != nil {
		return nil, fmt.Errorf("grid %s: %w", domain.GridAC, err)
	}
	fig.SetTitle(cfg.Title)
	return fig, nil
}
