// Package mitgcm serves ASTE model output stored as a netCDF file of
// per-face variables.
package mitgcm

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/adapter/ncvar"
	"go.ngs.io/aste-maps/internal/domain"
)

// DefaultFields are the data variables looked up when Options.Fields is empty.
var DefaultFields = []string{
	"THETA", "SALT", "ETAN", "UVEL", "VVEL", "WVEL",
	"MXLDEPTH", "SIarea", "SIheff", "SIhsnow", "PHIBOT",
}

// Options configures a Store.
type Options struct {
	// Fields lists the data variables to expose. Variables absent from
	// the file are skipped.
	Fields []string
}

// Store is a domain.Dataset backed by one netCDF file. Variables are laid
// out as (face, i, j) or (face, j, i); the latter is transposed on load.
// Leading dimensions of length one (time, depth level) are dropped.
type Store struct {
	path   string
	name   string
	faces  int
	fields []string

	cache map[string][]*mat.Dense // Cache loaded variables by name.
	mu    sync.RWMutex            // Protect cache.
}

// Open checks that path holds the coordinate variables and returns a store
// over it. Variables are read lazily on first selection.
func Open(path string, opts Options) (*Store, error) {
	nc, closeFile, err := ncvar.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	faces := -1
	for _, name := range []string{domain.VarLon, domain.VarLat, domain.VarDepth} {
		v, err := nc.Var(name)
		if err != nil {
			return nil, fmt.Errorf("%s: coordinate %s: %w", path, name, ncvar.ErrNotFound)
		}
		lens, _, err := ncvar.Shape(v)
		if err != nil {
			return nil, fmt.Errorf("%s: coordinate %s: %w", path, name, err)
		}
		n, err := faceCount(lens)
		if err != nil {
			return nil, fmt.Errorf("%s: coordinate %s: %w", path, name, err)
		}
		if faces >= 0 && n != faces {
			return nil, fmt.Errorf("%s: coordinate %s has %d faces, expected %d", path, name, n, faces)
		}
		faces = n
	}

	candidates := opts.Fields
	if len(candidates) == 0 {
		candidates = DefaultFields
	}
	var fields []string
	for _, name := range candidates {
		if _, err := nc.Var(name); err == nil {
			fields = append(fields, name)
		}
	}

	return &Store{
		path:   path,
		name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		faces:  faces,
		fields: fields,
		cache:  make(map[string][]*mat.Dense),
	}, nil
}

// Name returns the file name without its extension.
func (s *Store) Name() string { return s.name }

// NumFaces returns the number of faces.
func (s *Store) NumFaces() int { return s.faces }

// Fields returns the data variables found in the file.
func (s *Store) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Select returns a copy of the selected part of variable on face.
func (s *Store) Select(variable string, face int, sel domain.Selection) (*mat.Dense, error) {
	if face < 0 || face >= s.faces {
		return nil, fmt.Errorf("%w: face %d of %d", domain.ErrFaceOutOfRange, face, s.faces)
	}
	if !s.known(variable) {
		return nil, fmt.Errorf("%w: %q in %s", domain.ErrUnknownField, variable, s.name)
	}
	faces, err := s.load(variable)
	if err != nil {
		return nil, err
	}
	m, err := domain.SliceFace(faces[face], sel)
	if err != nil {
		return nil, fmt.Errorf("%s face %d%s: %w", variable, face, sel, err)
	}
	return m, nil
}

func (s *Store) known(variable string) bool {
	switch variable {
	case domain.VarLon, domain.VarLat, domain.VarDepth:
		return true
	}
	for _, f := range s.fields {
		if f == variable {
			return true
		}
	}
	return false
}

// load reads every face of variable, using the cache when possible.
func (s *Store) load(variable string) ([]*mat.Dense, error) {
	s.mu.RLock()
	if faces, ok := s.cache[variable]; ok {
		s.mu.RUnlock()
		return faces, nil
	}
	s.mu.RUnlock()

	faces, err := readFaces(s.path, variable)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", variable, err)
	}
	if len(faces) != s.faces {
		return nil, fmt.Errorf("failed to load %s: %d faces, expected %d", variable, len(faces), s.faces)
	}

	s.mu.Lock()
	s.cache[variable] = faces
	s.mu.Unlock()
	return faces, nil
}

// readFaces reads variable from path as one matrix per face. Fill values
// become zero, which the land mask and gap filler both treat as missing.
func readFaces(path, variable string) ([]*mat.Dense, error) {
	nc, closeFile, err := ncvar.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	v, err := nc.Var(variable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, variable)
	}
	lens, names, err := ncvar.Shape(v)
	if err != nil {
		return nil, err
	}
	nf, err := faceCount(lens)
	if err != nil {
		return nil, err
	}
	data, err := ncvar.ReadFloat64s(v, 0)
	if err != nil {
		return nil, err
	}

	n := len(lens)
	d1, d2 := lens[n-2], lens[n-1]
	transpose := ncvar.IsJDim(names[n-2])
	if d1 == 0 || d2 == 0 {
		return nil, errors.New("empty face dimensions")
	}

	faces := make([]*mat.Dense, nf)
	size := d1 * d2
	for f := 0; f < nf; f++ {
		m := mat.NewDense(d1, d2, data[f*size:(f+1)*size])
		if transpose {
			m = mat.DenseCopyOf(m.T())
		}
		faces[f] = m
	}
	return faces, nil
}

// faceCount returns the face dimension length of a (..., face, a, b)
// variable whose other leading dimensions all have length one.
func faceCount(lens []int) (int, error) {
	n := len(lens)
	if n < 3 {
		return 0, fmt.Errorf("expected (face, i, j) layout, got %dD", n)
	}
	for _, l := range lens[:n-3] {
		if l != 1 {
			return 0, fmt.Errorf("leading dimensions %v must have length one", lens[:n-3])
		}
	}
	return lens[n-3], nil
}
