package synth

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"go.ngs.io/aste-maps/internal/adapter/facet"
	"go.ngs.io/aste-maps/internal/adapter/store/mitgcm"
	"go.ngs.io/aste-maps/internal/domain"
)

func smallOptions() Options {
	return Options{Rows: 12, Cols: 9, Step: 0.5, Hole: 3, Land: 2, Field: DefaultField}
}

func TestDataset(t *testing.T) {
	o := smallOptions()
	ds, err := Dataset(o)
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if got := ds.Fields(); len(got) != 1 || got[0] != DefaultField {
		t.Fatalf("Fields = %v", got)
	}
	for face := 0; face < 6; face++ {
		lon, err := ds.Select(domain.VarLon, face, domain.Selection{})
		if err != nil {
			t.Fatal(err)
		}
		zeros := domain.ValueMask(lon, 0).Count()
		if HasHoles(face) && zeros != o.Hole*o.Hole {
			t.Errorf("face %d: %d placeholders, want %d", face, zeros, o.Hole*o.Hole)
		}
		if !HasHoles(face) && zeros != 0 {
			t.Errorf("face %d: unexpected placeholders", face)
		}
		depth, _ := ds.Select(domain.VarDepth, face, domain.Selection{})
		wantLand := o.Rows*o.Cols - (o.Rows-o.Land)*(o.Cols-o.Land)
		if got := domain.LandMask(depth).Count(); got != wantLand {
			t.Errorf("face %d: %d land cells, want %d", face, got, wantLand)
		}
	}

	bad := o
	bad.Rows = 1
	if _, err := Dataset(bad); err == nil {
		t.Fatal("expected error for 1-row faces")
	}
}

func TestWriteDataset_RoundTrip(t *testing.T) {
	o := smallOptions()
	ds, err := Dataset(o)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "aste.nc")
	if err := WriteDataset(path, ds, []string{o.Field}); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}

	s, err := mitgcm.Open(path, mitgcm.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.NumFaces() != 6 {
		t.Fatalf("NumFaces = %d", s.NumFaces())
	}
	for _, face := range []int{0, 4} {
		for _, name := range []string{domain.VarLon, domain.VarLat, domain.VarDepth, o.Field} {
			want, _ := ds.Select(name, face, domain.Selection{})
			depth, _ := ds.Select(domain.VarDepth, face, domain.Selection{})
			got, err := s.Select(name, face, domain.Selection{})
			if err != nil {
				t.Fatalf("Select %s: %v", name, err)
			}
			if r, c := got.Dims(); r != o.Rows || c != o.Cols {
				t.Fatalf("%s dims = (%d,%d)", name, r, c)
			}
			for i := 0; i < o.Rows; i++ {
				for j := 0; j < o.Cols; j++ {
					w := want.At(i, j)
					if name == o.Field && depth.At(i, j) == 0 {
						w = 0
					}
					// Data variables are stored as float32.
					if math.Abs(got.At(i, j)-w) > 1e-4 {
						t.Fatalf("%s face %d (%d,%d) = %v, want %v", name, face, i, j, got.At(i, j), w)
					}
				}
			}
		}
	}
}

func TestWriteFacets(t *testing.T) {
	o := smallOptions()
	paths := domain.DefaultFacetPaths(t.TempDir())
	if err := WriteFacets(paths, o); err != nil {
		t.Fatalf("WriteFacets: %v", err)
	}

	a := facet.NewAssembler(zerolog.Nop())
	ac, err := a.BuildAC(paths)
	if err != nil {
		t.Fatalf("BuildAC: %v", err)
	}
	if r, c := ac.Dims(); r != 2*o.Rows || c != o.Cols {
		t.Fatalf("AC dims = (%d,%d)", r, c)
	}
	if got := ac.SourceAt(o.Rows, 0); got != (domain.CellIndex{Face: 2, I: 0, J: 0}) {
		t.Errorf("AC SourceAt(%d,0) = %+v", o.Rows, got)
	}

	ds, err := Dataset(o)
	if err != nil {
		t.Fatal(err)
	}
	r, err := facet.IndexRegridder{}.Regrid(ds, o.Field, ac)
	if err != nil {
		t.Fatalf("Regrid: %v", err)
	}
	want, _ := ds.Select(o.Field, 1, domain.Selection{})
	if got := r.Values.At(3, 4); got != want.At(3, 4) {
		t.Errorf("Values(3,4) = %v, want %v", got, want.At(3, 4))
	}
	if !math.IsNaN(r.Values.At(0, o.Cols-1)) {
		t.Error("last column should have no source")
	}
}
