package synth

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"
	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/adapter/facet"
	"go.ngs.io/aste-maps/internal/domain"
)

// FillValue marks land cells of data variables in written files.
const FillValue float32 = -9999

// WriteDataset writes the coordinates and fields of ds to path in MITgcm
// layout: (face, j, i). Data values on land are written as FillValue.
func WriteDataset(path string, ds domain.Dataset, fields []string) error {
	depth0, err := ds.Select(domain.VarDepth, 0, domain.Selection{})
	if err != nil {
		return err
	}
	rows, cols := depth0.Dims()
	nf := ds.NumFaces()

	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer nc.Close()

	faceDim, err := nc.AddDim("face", uint64(nf))
	if err != nil {
		return err
	}
	jDim, err := nc.AddDim("j", uint64(cols))
	if err != nil {
		return err
	}
	iDim, err := nc.AddDim("i", uint64(rows))
	if err != nil {
		return err
	}
	dims := []netcdf.Dim{faceDim, jDim, iDim}

	coords := []string{domain.VarLon, domain.VarLat, domain.VarDepth}
	vars := make(map[string]netcdf.Var, len(coords)+len(fields))
	for _, name := range coords {
		v, err := nc.AddVar(name, netcdf.DOUBLE, dims)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		vars[name] = v
	}
	for _, name := range fields {
		v, err := nc.AddVar(name, netcdf.FLOAT, dims)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if err := v.Attr("_FillValue").WriteFloat32s([]float32{FillValue}); err != nil {
			return fmt.Errorf("%s fill value: %w", name, err)
		}
		vars[name] = v
	}
	if err := nc.EndDef(); err != nil {
		return err
	}

	read := func(name string) ([]*mat.Dense, error) {
		out := make([]*mat.Dense, nf)
		for f := 0; f < nf; f++ {
			m, err := ds.Select(name, f, domain.Selection{})
			if err != nil {
				return nil, err
			}
			if r, c := m.Dims(); r != rows || c != cols {
				return nil, fmt.Errorf("%s face %d is %dx%d, expected %dx%d", name, f, r, c, rows, cols)
			}
			out[f] = m
		}
		return out, nil
	}
	depth, err := read(domain.VarDepth)
	if err != nil {
		return err
	}

	for _, name := range coords {
		faces, err := read(name)
		if err != nil {
			return err
		}
		if err := vars[name].WriteFloat64s(flattenJI(faces, nil)); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	for _, name := range fields {
		faces, err := read(name)
		if err != nil {
			return err
		}
		flat := flattenJI(faces, depth)
		out := make([]float32, len(flat))
		for k, v := range flat {
			out[k] = float32(v)
		}
		if err := vars[name].WriteFloat32s(out); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// flattenJI lays faces out as (face, j, i). Where depth is given and zero,
// the value becomes FillValue.
func flattenJI(faces, depth []*mat.Dense) []float64 {
	rows, cols := faces[0].Dims()
	out := make([]float64, 0, len(faces)*rows*cols)
	for f, m := range faces {
		for j := 0; j < cols; j++ {
			for i := 0; i < rows; i++ {
				if depth != nil && depth[f].At(i, j) == 0 {
					out = append(out, float64(FillValue))
					continue
				}
				out = append(out, m.At(i, j))
			}
		}
	}
	return out
}

// WriteFacets writes the four facet grid files for a dataset generated with
// o. Facets 1 and 5 map onto faces 1 and 2 so that together they form the
// AC grid; facet 4 maps onto face 4 and facet 3 onto face 3. The last
// column of every facet has no source.
func WriteFacets(paths domain.FacetPaths, o Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	for _, f := range []struct {
		path string
		face int
	}{
		{paths.Facet1, 1},
		{paths.Facet5, 2},
		{paths.Facet4, 4},
		{paths.Facet3, 3},
	} {
		if err := writeFacet(f.path, f.face, o); err != nil {
			return fmt.Errorf("facet %s: %w", f.path, err)
		}
	}
	return nil
}

func writeFacet(path string, face int, o Options) error {
	lon, lat := o.Coords(face)

	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer nc.Close()

	iDim, err := nc.AddDim("i", uint64(o.Rows))
	if err != nil {
		return err
	}
	jDim, err := nc.AddDim("j", uint64(o.Cols))
	if err != nil {
		return err
	}
	dims := []netcdf.Dim{iDim, jDim}
	xc, err := nc.AddVar(domain.VarLon, netcdf.DOUBLE, dims)
	if err != nil {
		return err
	}
	yc, err := nc.AddVar(domain.VarLat, netcdf.DOUBLE, dims)
	if err != nil {
		return err
	}
	idx := make([]netcdf.Var, 3)
	for k, name := range []string{facet.VarFace, facet.VarISrc, facet.VarJSrc} {
		if idx[k], err = nc.AddVar(name, netcdf.INT, dims); err != nil {
			return err
		}
	}
	if err := nc.EndDef(); err != nil {
		return err
	}

	n := o.Rows * o.Cols
	fs := make([]int32, n)
	is := make([]int32, n)
	js := make([]int32, n)
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			k := i*o.Cols + j
			fs[k], is[k], js[k] = int32(face), int32(i), int32(j)
			if j == o.Cols-1 {
				fs[k] = -1
			}
		}
	}
	if err := xc.WriteFloat64s(lon.RawMatrix().Data); err != nil {
		return err
	}
	if err := yc.WriteFloat64s(lat.RawMatrix().Data); err != nil {
		return err
	}
	for k, data := range [][]int32{fs, is, js} {
		if err := idx[k].WriteInt32s(data); err != nil {
			return err
		}
	}
	return nil
}
