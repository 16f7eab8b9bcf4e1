package aste

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/gapfill"
)

const (
	testRows  = 160
	testCols  = 280
	testField = "THETA"
)

// syntheticASTE returns six faces of testRows x testCols cells, each a small
// lon/lat patch in view of the map centre. Faces 1, 2 and 4 carry a block of
// zero coordinate placeholders; every face has land along its first rows
// and columns.
func syntheticASTE(t *testing.T) *domain.MemDataset {
	t.Helper()
	ds := domain.NewMemDataset("aste270-test", 6)
	for face := 0; face < 6; face++ {
		lon := mat.NewDense(testRows, testCols, nil)
		lat := mat.NewDense(testRows, testCols, nil)
		depth := mat.NewDense(testRows, testCols, nil)
		theta := mat.NewDense(testRows, testCols, nil)
		for i := 0; i < testRows; i++ {
			for j := 0; j < testCols; j++ {
				lon.Set(i, j, -70+8*float64(face)+0.1*float64(i))
				lat.Set(i, j, 20+5*float64(face)+0.1*float64(j))
				if i >= 3 && j >= 5 {
					depth.Set(i, j, 1000)
				}
				theta.Set(i, j, 0.01*float64(i+j))
			}
		}
		switch face {
		case 1, 2, 4:
			for i := 10; i < 20; i++ {
				for j := 10; j < 20; j++ {
					lon.Set(i, j, 0)
					lat.Set(i, j, 0)
				}
			}
		}
		require.NoError(t, ds.Set(domain.VarLon, face, lon))
		require.NoError(t, ds.Set(domain.VarLat, face, lat))
		require.NoError(t, ds.Set(domain.VarDepth, face, depth))
		require.NoError(t, ds.Set(testField, face, theta))
	}
	return ds
}

func testConfig() domain.PlotConfig {
	return domain.PlotConfig{
		FigSize: [2]float64{6, 5},
		VMin:    0,
		VMax:    4,
		CMap:    "coolwarm",
		Title:   "THETA at the surface",
	}
}

// stubFiller returns its input with a fixed convergence outcome.
type stubFiller struct {
	converged bool
	err       error
	calls     int
}

func (s *stubFiller) FillZeros(values *mat.Dense) (gapfill.Result, error) {
	s.calls++
	if s.err != nil {
		return gapfill.Result{}, s.err
	}
	return gapfill.Result{Values: values, Converged: s.converged, Iterations: 10000, Residual: 3.5}, nil
}
