// Package facet reads ASTE facet grid files and remaps face data onto them.
//
// A facet file holds, on (i, j) dimensions, the cell centres XC and YC and
// the integer variables face, isrc and jsrc that locate each cell in the
// six-face model grid. A face of -1 marks a cell with no source.
package facet

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/adapter/ncvar"
	"go.ngs.io/aste-maps/internal/domain"
)

// Index variable names in facet files.
const (
	VarFace = "face"
	VarISrc = "isrc"
	VarJSrc = "jsrc"
)

// Assembler builds the AC, PAC and ARC grids from facet files. Grids are
// cached by file path.
type Assembler struct {
	Logger zerolog.Logger

	cache map[string]*domain.FacetGrid
	mu    sync.RWMutex
}

// NewAssembler returns an Assembler that logs to logger.
func NewAssembler(logger zerolog.Logger) *Assembler {
	return &Assembler{Logger: logger, cache: make(map[string]*domain.FacetGrid)}
}

// BuildAC joins facets 1 and 5 along rows into the Atlantic grid.
func (a *Assembler) BuildAC(paths domain.FacetPaths) (*domain.FacetGrid, error) {
	f1, err := a.read(paths.Facet1)
	if err != nil {
		return nil, err
	}
	f5, err := a.read(paths.Facet5)
	if err != nil {
		return nil, err
	}
	return Concat(domain.GridAC, f1, f5)
}

// BuildPAC returns the Pacific grid of facet 4.
func (a *Assembler) BuildPAC(paths domain.FacetPaths) (*domain.FacetGrid, error) {
	return a.named(domain.GridPAC, paths.Facet4)
}

// BuildARC returns the Arctic grid of facet 3.
func (a *Assembler) BuildARC(paths domain.FacetPaths) (*domain.FacetGrid, error) {
	return a.named(domain.GridARC, paths.Facet3)
}

func (a *Assembler) named(name, path string) (*domain.FacetGrid, error) {
	g, err := a.read(path)
	if err != nil {
		return nil, err
	}
	out := *g
	out.Name = name
	return &out, nil
}

func (a *Assembler) read(path string) (*domain.FacetGrid, error) {
	a.mu.RLock()
	if g, ok := a.cache[path]; ok {
		a.mu.RUnlock()
		return g, nil
	}
	a.mu.RUnlock()

	g, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, cols := g.Dims()
	a.Logger.Debug().Str("path", path).Int("rows", rows).Int("cols", cols).Msg("facet grid loaded")

	a.mu.Lock()
	if a.cache == nil {
		a.cache = make(map[string]*domain.FacetGrid)
	}
	a.cache[path] = g
	a.mu.Unlock()
	return g, nil
}

// ReadFile reads one facet grid file. Variables stored as (j, i) are
// transposed so rows index i.
func ReadFile(path string) (*domain.FacetGrid, error) {
	nc, closeFile, err := ncvar.Open(path)
	if err != nil {
		return nil, fmt.Errorf("facet %s: %w", path, err)
	}
	defer closeFile()

	read := func(name string, fill float64) (*mat.Dense, error) {
		v, _, err := ncvar.Lookup(nc, name)
		if err != nil {
			return nil, fmt.Errorf("facet %s: %w", path, err)
		}
		m, dims, err := ncvar.Read2D(v, fill)
		if err != nil {
			return nil, fmt.Errorf("facet %s: %s: %w", path, name, err)
		}
		if ncvar.IsJDim(dims[0]) {
			m = mat.DenseCopyOf(m.T())
		}
		return m, nil
	}

	xc, err := read(domain.VarLon, math.NaN())
	if err != nil {
		return nil, err
	}
	yc, err := read(domain.VarLat, math.NaN())
	if err != nil {
		return nil, err
	}
	idx := make([]*mat.Dense, 3)
	for k, name := range []string{VarFace, VarISrc, VarJSrc} {
		if idx[k], err = read(name, -1); err != nil {
			return nil, err
		}
	}

	rows, cols := xc.Dims()
	for _, m := range append([]*mat.Dense{yc}, idx...) {
		if r, c := m.Dims(); r != rows || c != cols {
			return nil, fmt.Errorf("facet %s: variable shape (%d,%d) does not match XC (%d,%d)", path, r, c, rows, cols)
		}
	}
	src := make([]domain.CellIndex, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			src[i*cols+j] = domain.CellIndex{
				Face: int(idx[0].At(i, j)),
				I:    int(idx[1].At(i, j)),
				J:    int(idx[2].At(i, j)),
			}
		}
	}
	return &domain.FacetGrid{XC: xc, YC: yc, Source: src}, nil
}

// Concat stacks grids along rows. All grids must have the same number of
// columns.
func Concat(name string, grids ...*domain.FacetGrid) (*domain.FacetGrid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("concat %s: no grids", name)
	}
	_, cols := grids[0].Dims()
	rows := 0
	for _, g := range grids {
		r, c := g.Dims()
		if c != cols {
			return nil, fmt.Errorf("concat %s: %d columns, expected %d", name, c, cols)
		}
		rows += r
	}

	xc := mat.NewDense(rows, cols, nil)
	yc := mat.NewDense(rows, cols, nil)
	src := make([]domain.CellIndex, 0, rows*cols)
	r0 := 0
	for _, g := range grids {
		r, _ := g.Dims()
		xc.Slice(r0, r0+r, 0, cols).(*mat.Dense).Copy(g.XC)
		yc.Slice(r0, r0+r, 0, cols).(*mat.Dense).Copy(g.YC)
		src = append(src, g.Source...)
		r0 += r
	}
	return &domain.FacetGrid{Name: name, XC: xc, YC: yc, Source: src}, nil
}

// IndexRegridder copies each facet cell from its source cell. Cells with
// no source are NaN and so left undrawn.
type IndexRegridder struct{}

// Regrid remaps field of ds onto grid.
func (IndexRegridder) Regrid(ds domain.Dataset, field string, grid *domain.FacetGrid) (*domain.RegriddedField, error) {
	rows, cols := grid.Dims()
	if len(grid.Source) != rows*cols {
		return nil, fmt.Errorf("regrid %s: %w: %d source indices for %dx%d cells",
			grid.Name, domain.ErrMissingFacetMap, len(grid.Source), rows, cols)
	}

	faces := make(map[int]*mat.Dense)
	values := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s := grid.SourceAt(i, j)
			if s.Face < 0 {
				values.Set(i, j, math.NaN())
				continue
			}
			m, ok := faces[s.Face]
			if !ok {
				var err error
				if m, err = ds.Select(field, s.Face, domain.Selection{}); err != nil {
					return nil, fmt.Errorf("regrid %s: %w", grid.Name, err)
				}
				faces[s.Face] = m
			}
			fr, fc := m.Dims()
			if s.I < 0 || s.I >= fr || s.J < 0 || s.J >= fc {
				return nil, fmt.Errorf("regrid %s: source (%d,%d) outside face %d of %dx%d",
					grid.Name, s.I, s.J, s.Face, fr, fc)
			}
			values.Set(i, j, m.At(s.I, s.J))
		}
	}
	return &domain.RegriddedField{
		Grid:     grid.Name,
		Variable: field,
		XC:       grid.XC,
		YC:       grid.YC,
		Values:   values,
	}, nil
}
