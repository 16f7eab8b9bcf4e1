// Package ncvar holds the netCDF variable helpers shared by the dataset
// store and the facet grid reader.
package ncvar

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"
	"gonum.org/v1/gonum/mat"
)

// ErrNotFound is returned when a file has none of the requested variables.
var ErrNotFound = errors.New("variable not found")

// libMu serializes calls into the netCDF C library, which is not thread safe.
var libMu sync.Mutex

// Open opens path read-only. The library lock is held until the returned
// close function runs.
func Open(path string) (nc netcdf.Dataset, closeFile func(), err error) {
	libMu.Lock()
	nc, err = netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		libMu.Unlock()
		return nc, nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	return nc, func() {
		_ = nc.Close()
		libMu.Unlock()
	}, nil
}

// Lookup returns the first variable of ds named in names.
func Lookup(ds netcdf.Dataset, names ...string) (v netcdf.Var, name string, err error) {
	for _, name = range names {
		if v, err = ds.Var(name); err == nil {
			return v, name, nil
		}
	}
	return v, "", fmt.Errorf("%w (tried: %v)", ErrNotFound, names)
}

// FillValue returns the _FillValue or missing_value attribute of v.
func FillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if a == (netcdf.Attr{}) {
			continue
		}
		if n, err := a.Len(); err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
		bufi := make([]int32, 1)
		if err := a.ReadInt32s(bufi); err == nil {
			return float64(bufi[0]), true
		}
	}
	return 0, false
}

// Shape returns the dimension lengths and names of v.
func Shape(v netcdf.Var) ([]int, []string, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	lens := make([]int, len(dims))
	names := make([]string, len(dims))
	for k, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get dim%d length: %w", k, err)
		}
		lens[k] = int(n)
		if names[k], err = d.Name(); err != nil {
			return nil, nil, fmt.Errorf("failed to get dim%d name: %w", k, err)
		}
	}
	return lens, names, nil
}

// ReadFloat64s reads every element of v as float64, whatever its numeric
// type. Values equal to the fill value are replaced with fill.
func ReadFloat64s(v netcdf.Var, fill float64) ([]float64, error) {
	lens, _, err := Shape(v)
	if err != nil {
		return nil, err
	}
	total := 1
	for _, n := range lens {
		total *= n
	}
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	var out []float64
	switch t {
	case netcdf.DOUBLE:
		out = make([]float64, total)
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out = make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out = make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out = make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}

	if fv, ok := FillValue(v); ok {
		for i, val := range out {
			if val == fv {
				out[i] = fill
			}
		}
	}
	return out, nil
}

// Read2D reads a two-dimensional variable into a matrix with rows along
// the first dimension.
func Read2D(v netcdf.Var, fill float64) (*mat.Dense, []string, error) {
	lens, names, err := Shape(v)
	if err != nil {
		return nil, nil, err
	}
	if len(lens) != 2 {
		return nil, nil, fmt.Errorf("expected 2D data, got %dD", len(lens))
	}
	if lens[0] == 0 || lens[1] == 0 {
		return nil, nil, fmt.Errorf("empty variable of shape %v", lens)
	}
	data, err := ReadFloat64s(v, fill)
	if err != nil {
		return nil, nil, err
	}
	return mat.NewDense(lens[0], lens[1], data), names, nil
}

// IsJDim reports whether a dimension name denotes the j (y) axis of an
// MITgcm face.
func IsJDim(name string) bool {
	switch strings.ToLower(name) {
	case "j", "j_g", "y", "yc", "yg", "nj":
		return true
	}
	return false
}
