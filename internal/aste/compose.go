package aste

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"

	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/gapfill"
	"go.ngs.io/aste-maps/internal/render"
)

// Centre of the map view.
const (
	CentralLongitude = -35.0
	CentralLatitude  = 40.0
)

// GapFiller fills zero placeholders of a coordinate array.
type GapFiller interface {
	FillZeros(values *mat.Dense) (gapfill.Result, error)
}

// GridAssembler builds the named facet grids.
type GridAssembler interface {
	BuildAC(paths domain.FacetPaths) (*domain.FacetGrid, error)
	BuildPAC(paths domain.FacetPaths) (*domain.FacetGrid, error)
	BuildARC(paths domain.FacetPaths) (*domain.FacetGrid, error)
}

// Regridder remaps a dataset field onto a facet grid.
type Regridder interface {
	Regrid(ds domain.Dataset, field string, grid *domain.FacetGrid) (*domain.RegriddedField, error)
}

// Compositor draws multi-face fields onto one map. Each call builds its own
// figure, so one Compositor may serve concurrent callers.
//
// Gap-filled coordinates do not depend on the plotted field and are cached
// per dataset name, face and coordinate.
type Compositor struct {
	Layout    domain.GridLayout
	Filler    GapFiller
	Assembler GridAssembler
	Regridder Regridder

	// StrictConvergence turns gap fill non-convergence into a failure
	// instead of a warning on the figure.
	StrictConvergence bool

	Logger zerolog.Logger

	mu     sync.Mutex
	filled map[coordKey]gapfill.Result
}

type coordKey struct {
	dataset string
	face    int
	sel     string
	name    string
}

// NewCompositor returns a compositor for the ASTE 270 grid with the
// default gap fill parameters.
func NewCompositor(logger zerolog.Logger) *Compositor {
	return &Compositor{
		Layout: domain.ASTE270,
		Filler: gapfill.Default(),
		Logger: logger,
	}
}

// PlotASTE draws field from every face of the layout. Faces are drawn in
// layout order and the colorbar is attached after the last one. Any face
// failure aborts the call.
//
// cfg is expected to come from domain.PlotConfigFromMap or
// domain.LoadPlotConfig, which reject missing keys. Here only its values
// are validated.
func (c *Compositor) PlotASTE(ds domain.Dataset, field string, cfg domain.PlotConfig) (*render.Figure, error) {
	if ds == nil {
		return nil, errors.New("plot ASTE: nil dataset")
	}
	if len(c.Layout) == 0 {
		return nil, errors.New("plot ASTE: empty grid layout")
	}
	cmap, proj, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	faces := c.Layout.Faces()
	for _, face := range faces {
		if face < 0 || face >= ds.NumFaces() {
			return nil, fmt.Errorf("plot ASTE: %w: face %d of %d", domain.ErrFaceOutOfRange, face, ds.NumFaces())
		}
	}
	fig, ax, err := newMap(cfg, proj)
	if err != nil {
		return nil, err
	}
	norm := render.Norm{VMin: cfg.VMin, VMax: cfg.VMax}

	log := c.Logger.With().Str("dataset", ds.Name()).Str("field", field).Logger()
	log.Debug().Ints("faces", faces).Str("projection", proj.Name()).Msg("composing faces")
	for k, rule := range c.Layout {
		arrays, err := Extract(ds, field, rule.Face, rule.Sel)
		if err != nil {
			return nil, err
		}
		if rule.GapFill {
			key := coordKey{dataset: ds.Name(), face: rule.Face, sel: rule.Sel.String()}
			key.name = domain.VarLon
			if arrays.Lon, err = c.fill(fig, log, key, arrays.Lon); err != nil {
				return nil, err
			}
			key.name = domain.VarLat
			if arrays.Lat, err = c.fill(fig, log, key, arrays.Lat); err != nil {
				return nil, err
			}
		}
		mask := domain.LandMask(arrays.Depth)
		mesh, err := PlotFace(ax, arrays.Lon, arrays.Lat, arrays.Data, mask, norm, cmap)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", rule.Face, err)
		}
		rows, cols := arrays.Dims()
		log.Debug().Int("face", rule.Face).Int("rows", rows).Int("cols", cols).
			Int("cells", mesh.NumCells()).Int("land", mask.Count()).Msg("face drawn")

		if k == len(c.Layout)-1 {
			var ticks []float64
			var labels []string
			if cfg.HasTicks() {
				ticks, labels = cfg.CTicks, cfg.TickLabels()
			}
			if _, err := fig.AddColorbar(mesh, ticks, labels, render.DefaultShrink); err != nil {
				return nil, &domain.RenderError{Op: "colorbar", Err: err}
			}
		}
	}

	ax.AddGridlines()
	fig.SetTitle(cfg.Title)
	return fig, nil
}

// fill gap fills one coordinate array, or reuses an earlier fill of the
// same coordinate. Non-convergence is recorded on fig, or returned when
// StrictConvergence is set.
func (c *Compositor) fill(fig *render.Figure, log zerolog.Logger, key coordKey, values *mat.Dense) (*mat.Dense, error) {
	if c.Filler == nil {
		return nil, errors.New("plot ASTE: no gap filler configured")
	}
	c.mu.Lock()
	res, ok := c.filled[key]
	c.mu.Unlock()
	if !ok {
		var err error
		if res, err = c.Filler.FillZeros(values); err != nil {
			return nil, fmt.Errorf("face %d: gap fill %s: %w", key.face, key.name, err)
		}
		c.mu.Lock()
		if c.filled == nil {
			c.filled = make(map[coordKey]gapfill.Result)
		}
		c.filled[key] = res
		c.mu.Unlock()
		log.Debug().Int("face", key.face).Str("coordinate", key.name).
			Int("iterations", res.Iterations).Bool("converged", res.Converged).Msg("coordinates gap filled")
	}
	if !res.Converged {
		nce := &domain.NonConvergenceError{
			Face:       key.face,
			Coordinate: key.name,
			Iterations: res.Iterations,
			Residual:   res.Residual,
		}
		if c.StrictConvergence {
			return nil, nce
		}
		log.Warn().Err(nce).Int("face", key.face).Str("coordinate", key.name).Msg("gap fill did not converge")
		fig.Warn(nce)
	}
	return res.Values, nil
}

// prepare validates cfg and resolves its colormap and projection before
// anything is drawn.
func prepare(cfg domain.PlotConfig) (palette.ColorMap, render.Projection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cmap, err := render.ColorMap(cfg.CMap)
	if err != nil {
		return nil, nil, &domain.ConfigurationError{Key: domain.KeyCMap, Reason: err.Error()}
	}
	proj, err := render.ParseProjection(cfg.Projection, CentralLongitude, CentralLatitude)
	if err != nil {
		return nil, nil, &domain.ConfigurationError{Key: domain.KeyProjection, Reason: err.Error()}
	}
	return cmap, proj, nil
}

// newMap creates a figure with map axes and the land layer.
func newMap(cfg domain.PlotConfig, proj render.Projection) (*render.Figure, *render.Axes, error) {
	fig, err := render.NewFigure(vg.Length(cfg.FigSize[0])*vg.Inch, vg.Length(cfg.FigSize[1])*vg.Inch)
	if err != nil {
		return nil, nil, &domain.RenderError{Op: "figure", Err: err}
	}
	ax, err := fig.AddAxes(proj)
	if err != nil {
		return nil, nil, &domain.RenderError{Op: "axes", Err: err}
	}
	ax.AddFeature(render.Land())
	return fig, ax, nil
}
