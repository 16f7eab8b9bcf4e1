package usecase

import (
	"errors"
	"fmt"
	"strings"

	"go.ngs.io/aste-maps/internal/aste"
	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/render"
)

var (
	// ErrInvalidRequest marks a request rejected before rendering.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrGridsUnavailable is returned for facet grid maps when no facet
	// grid directory is configured.
	ErrGridsUnavailable = errors.New("facet grids are not configured")
)

// RenderRequest describes one map rendering.
type RenderRequest struct {
	Field  string
	Config domain.PlotConfig

	// Format is png, jpg, tif, svg, eps or pdf. Defaults to png.
	Format string

	// Grids selects the facet grid pipeline.
	Grids bool
}

// RenderResponse holds an encoded figure.
type RenderResponse struct {
	Image       []byte
	ContentType string
	Format      string
	Warnings    []string
}

// Validate checks the request fields the plotting layer does not.
func (r *RenderRequest) Validate() error {
	if r.Field == "" {
		return fmt.Errorf("%w: field is required", ErrInvalidRequest)
	}
	if r.Format == "" {
		r.Format = "png"
	}
	r.Format = strings.ToLower(r.Format)
	if _, ok := render.ContentType(r.Format); !ok {
		return fmt.Errorf("%w: unsupported format %q (expected png, jpg, tif, svg, eps or pdf)", ErrInvalidRequest, r.Format)
	}
	return nil
}

// RenderUseCase renders dataset fields to encoded maps.
type RenderUseCase struct {
	dataset    domain.Dataset
	compositor *aste.Compositor
	facets     *domain.FacetPaths
}

// NewRenderUseCase creates a render use case. facets may be nil, in which
// case grid maps are unavailable.
func NewRenderUseCase(ds domain.Dataset, compositor *aste.Compositor, facets *domain.FacetPaths) *RenderUseCase {
	return &RenderUseCase{
		dataset:    ds,
		compositor: compositor,
		facets:     facets,
	}
}

// Execute renders and encodes the requested map.
func (uc *RenderUseCase) Execute(req RenderRequest) (*RenderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var fig *render.Figure
	var err error
	if req.Grids {
		if uc.facets == nil {
			return nil, ErrGridsUnavailable
		}
		fig, err = uc.compositor.PlotASTEWithGrids(uc.dataset, req.Field, req.Config, *uc.facets)
	} else {
		fig, err = uc.compositor.PlotASTE(uc.dataset, req.Field, req.Config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", req.Field, err)
	}

	img, err := fig.Bytes(req.Format)
	if err != nil {
		return nil, &domain.RenderError{Op: "encode " + req.Format, Err: err}
	}
	ct, _ := render.ContentType(req.Format)

	warnings := make([]string, len(fig.Warnings))
	for i, w := range fig.Warnings {
		warnings[i] = w.Error()
	}
	return &RenderResponse{
		Image:       img,
		ContentType: ct,
		Format:      req.Format,
		Warnings:    warnings,
	}, nil
}

// Fields returns the dataset's data variables.
func (uc *RenderUseCase) Fields() []string {
	return uc.dataset.Fields()
}

// DatasetName returns the name of the served dataset.
func (uc *RenderUseCase) DatasetName() string {
	return uc.dataset.Name()
}

// GridsAvailable reports whether facet grid maps can be rendered.
func (uc *RenderUseCase) GridsAvailable() bool {
	return uc.facets != nil
}

// ColorMaps returns the registered colormap names.
func (uc *RenderUseCase) ColorMaps() []string {
	return render.ColorMapNames()
}
