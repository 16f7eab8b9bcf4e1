package aste

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"go.ngs.io/aste-maps/internal/domain"
)

func TestExtract_FaceRules(t *testing.T) {
	ds := syntheticASTE(t)
	tests := []struct {
		face       int
		rows, cols int
	}{
		{1, testRows, testCols},
		{2, testRows, testCols},
		{4, testRows, testCols},
		{3, 125, testCols},
		{5, 155, testCols},
		{0, testRows, 155},
	}
	require.Len(t, domain.ASTE270, len(tests))
	for k, tt := range tests {
		rule := domain.ASTE270[k]
		require.Equal(t, tt.face, rule.Face)
		arrays, err := Extract(ds, testField, tt.face, rule.Sel)
		require.NoError(t, err, "face %d", tt.face)
		for name, m := range map[string]*mat.Dense{"lon": arrays.Lon, "lat": arrays.Lat, "depth": arrays.Depth, "data": arrays.Data} {
			r, c := m.Dims()
			assert.Equal(t, tt.rows, r, "face %d %s rows", tt.face, name)
			assert.Equal(t, tt.cols, c, "face %d %s cols", tt.face, name)
		}
	}
}

func TestExtract_ShapeMismatch(t *testing.T) {
	ds := syntheticASTE(t)
	require.NoError(t, ds.Set(domain.VarDepth, 2, mat.NewDense(testRows, testCols-1, nil)))

	_, err := Extract(ds, testField, 2, domain.Selection{})
	var sme *domain.ShapeMismatchError
	require.ErrorAs(t, err, &sme)
	assert.Equal(t, 2, sme.Face)
	assert.Len(t, sme.Shapes, 4)
}

func TestExtract_UnknownField(t *testing.T) {
	ds := syntheticASTE(t)
	_, err := Extract(ds, "SALT", 1, domain.Selection{})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestPlotASTE(t *testing.T) {
	ds := syntheticASTE(t)
	c := NewCompositor(zerolog.Nop())

	fig, err := c.PlotASTE(ds, testField, testConfig())
	require.NoError(t, err)
	require.NotNil(t, fig)
	assert.Empty(t, fig.Warnings)
	assert.Equal(t, "THETA at the surface", fig.Title)
	require.NotNil(t, fig.Axes)
	assert.NotNil(t, fig.Axes.Land())
	assert.NotNil(t, fig.Axes.Gridlines())
	assert.False(t, fig.Axes.Global())

	meshes := fig.Axes.Meshes()
	require.Len(t, meshes, 6)

	// Layout order is 1, 2, 4, 3, 5, 0.
	wantShapes := [][2]int{
		{testRows, testCols}, {testRows, testCols}, {testRows, testCols},
		{125, testCols}, {155, testCols}, {testRows, 155},
	}
	for k, m := range meshes {
		lon, _ := m.Nodes()
		r, cols := lon.Dims()
		assert.Equal(t, wantShapes[k], [2]int{r, cols}, "mesh %d", k)
		assert.NotZero(t, m.NumCells(), "mesh %d", k)
		assert.NotZero(t, m.NumMasked(), "mesh %d", k)
	}

	// Gap filled faces keep no zero placeholders.
	for k := 0; k < 3; k++ {
		lon, lat := meshes[k].Nodes()
		assert.Zero(t, domain.ValueMask(lon, 0).Count(), "mesh %d lon", k)
		assert.Zero(t, domain.ValueMask(lat, 0).Count(), "mesh %d lat", k)
	}

	require.NotNil(t, fig.Colorbar)
	assert.Equal(t, 0.75, fig.Colorbar.Shrink)
	assert.Equal(t, "ortho(-35,40)", fig.Axes.Projection.Name())
	ticks := fig.Colorbar.Ticks()
	require.NotEmpty(t, ticks)
	for _, tk := range ticks {
		assert.GreaterOrEqual(t, tk.Value, 0.0)
		assert.LessOrEqual(t, tk.Value, 4.0)
	}

	var buf bytes.Buffer
	require.NoError(t, fig.Encode(&buf, "png"))
	assert.NotZero(t, buf.Len())
}

func TestPlotASTE_ExplicitTicks(t *testing.T) {
	ds := syntheticASTE(t)
	cfg := testConfig()
	cfg.VMax = 2
	cfg.CTicks = []float64{0, 1, 2}
	cfg.CTickLabels = []string{"a", "b", "c"}

	fig, err := NewCompositor(zerolog.Nop()).PlotASTE(ds, testField, cfg)
	require.NoError(t, err)
	ticks := fig.Colorbar.Ticks()
	require.Len(t, ticks, 3)
	for k, want := range []string{"a", "b", "c"} {
		assert.Equal(t, float64(k), ticks[k].Value)
		assert.Equal(t, want, ticks[k].Label)
	}
}

func TestPlotASTE_Projection(t *testing.T) {
	ds := syntheticASTE(t)
	c := NewCompositor(zerolog.Nop())
	c.Filler = &stubFiller{converged: true}

	tests := []struct {
		def  string
		want string
	}{
		{"platecarree", "platecarree(-35)"},
		{"+proj=merc +lon_0=0 +datum=WGS84 +units=m +no_defs", "+proj=merc +lon_0=0 +datum=WGS84 +units=m +no_defs"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := testConfig()
			cfg.Projection = tt.def
			fig, err := c.PlotASTE(ds, testField, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fig.Axes.Projection.Name())
			require.Len(t, fig.Axes.Meshes(), 6)
			for k, m := range fig.Axes.Meshes() {
				assert.NotZero(t, m.NumCells(), "mesh %d", k)
			}
		})
	}

	cfg := testConfig()
	cfg.Projection = "mollweide"
	_, err := c.PlotASTE(ds, testField, cfg)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, domain.KeyProjection, cfgErr.Key)
}

func TestPlotASTE_ReusesFilledCoordinates(t *testing.T) {
	ds := syntheticASTE(t)

	t.Run("converged", func(t *testing.T) {
		filler := &stubFiller{converged: true}
		c := NewCompositor(zerolog.Nop())
		c.Filler = filler
		for _, field := range []string{testField, domain.VarDepth} {
			_, err := c.PlotASTE(ds, field, testConfig())
			require.NoError(t, err)
		}
		// Two coordinates on each of faces 1, 2 and 4, filled once.
		assert.Equal(t, 6, filler.calls)
	})

	t.Run("warnings repeat", func(t *testing.T) {
		filler := &stubFiller{converged: false}
		c := NewCompositor(zerolog.Nop())
		c.Filler = filler
		for k := 0; k < 2; k++ {
			fig, err := c.PlotASTE(ds, testField, testConfig())
			require.NoError(t, err)
			assert.Len(t, fig.Warnings, 6, "render %d", k)
		}
		assert.Equal(t, 6, filler.calls)

		c.StrictConvergence = true
		_, err := c.PlotASTE(ds, testField, testConfig())
		var nce *domain.NonConvergenceError
		require.ErrorAs(t, err, &nce)
		assert.Equal(t, 6, filler.calls)
	})

	t.Run("per dataset", func(t *testing.T) {
		filler := &stubFiller{converged: true}
		c := NewCompositor(zerolog.Nop())
		c.Filler = filler
		_, err := c.PlotASTE(ds, testField, testConfig())
		require.NoError(t, err)

		other := domain.NewMemDataset("other", 6)
		for _, name := range []string{domain.VarLon, domain.VarLat, domain.VarDepth, testField} {
			for face := 0; face < 6; face++ {
				m, err := ds.Select(name, face, domain.Selection{})
				require.NoError(t, err)
				require.NoError(t, other.Set(name, face, m))
			}
		}
		_, err = c.PlotASTE(other, testField, testConfig())
		require.NoError(t, err)
		assert.Equal(t, 12, filler.calls)
	})
}

func TestPlotASTE_FaceOutOfRange(t *testing.T) {
	ds := domain.NewMemDataset("four-faces", 4)
	fig, err := NewCompositor(zerolog.Nop()).PlotASTE(ds, testField, testConfig())
	assert.ErrorIs(t, err, domain.ErrFaceOutOfRange)
	assert.Nil(t, fig)
}

func TestPlotASTE_ConfigurationErrors(t *testing.T) {
	ds := syntheticASTE(t)
	filler := &stubFiller{converged: true}
	c := NewCompositor(zerolog.Nop())
	c.Filler = filler

	cfg := testConfig()
	cfg.CMap = "no-such-map"
	fig, err := c.PlotASTE(ds, testField, cfg)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, domain.KeyCMap, cfgErr.Key)
	assert.Nil(t, fig)

	cfg = testConfig()
	cfg.VMax = cfg.VMin
	_, err = c.PlotASTE(ds, testField, cfg)
	require.ErrorAs(t, err, &cfgErr)

	// Nothing was drawn or filled.
	assert.Zero(t, filler.calls)
}

func TestPlotASTE_MissingVMaxBeforeDrawing(t *testing.T) {
	_, err := domain.PlotConfigFromMap(map[string]any{
		"figsize": []any{6, 5}, "vmin": 0, "cmap": "coolwarm", "title": "x",
	})
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, domain.KeyVMax, cfgErr.Key)
}

func TestPlotASTE_NonConvergence(t *testing.T) {
	ds := syntheticASTE(t)

	t.Run("warning", func(t *testing.T) {
		var logBuf bytes.Buffer
		c := NewCompositor(zerolog.New(&logBuf))
		c.Filler = &stubFiller{converged: false}

		fig, err := c.PlotASTE(ds, testField, testConfig())
		require.NoError(t, err)
		// Two coordinates on each of faces 1, 2 and 4.
		require.Len(t, fig.Warnings, 6)
		var nce *domain.NonConvergenceError
		require.ErrorAs(t, fig.Warnings[0], &nce)
		assert.Equal(t, 1, nce.Face)
		assert.Equal(t, domain.VarLon, nce.Coordinate)
		assert.Contains(t, logBuf.String(), "gap fill did not converge")
	})

	t.Run("strict", func(t *testing.T) {
		c := NewCompositor(zerolog.Nop())
		c.Filler = &stubFiller{converged: false}
		c.StrictConvergence = true

		fig, err := c.PlotASTE(ds, testField, testConfig())
		var nce *domain.NonConvergenceError
		require.ErrorAs(t, err, &nce)
		assert.Nil(t, fig)
	})
}

func TestPlotASTE_FaceFailureAborts(t *testing.T) {
	ds := syntheticASTE(t)

	t.Run("gap fill error", func(t *testing.T) {
		boom := errors.New("boom")
		c := NewCompositor(zerolog.Nop())
		c.Filler = &stubFiller{err: boom}
		fig, err := c.PlotASTE(ds, testField, testConfig())
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, fig)
	})

	t.Run("shape mismatch on last face", func(t *testing.T) {
		bad := syntheticASTE(t)
		require.NoError(t, bad.Set(testField, 0, mat.NewDense(testRows, 200, nil)))
		fig, err := NewCompositor(zerolog.Nop()).PlotASTE(bad, testField, testConfig())
		var sme *domain.ShapeMismatchError
		require.ErrorAs(t, err, &sme)
		assert.Equal(t, 0, sme.Face)
		assert.Nil(t, fig)
	})

	t.Run("unknown field", func(t *testing.T) {
		fig, err := NewCompositor(zerolog.Nop()).PlotASTE(ds, "SALT", testConfig())
		assert.ErrorIs(t, err, domain.ErrUnknownField)
		assert.Nil(t, fig)
	})

	t.Run("degenerate mesh", func(t *testing.T) {
		bad := syntheticASTE(t)
		require.NoError(t, bad.Set(domain.VarLon, 3, mat.NewDense(1, testCols, nil)))
		require.NoError(t, bad.Set(domain.VarLat, 3, mat.NewDense(1, testCols, nil)))
		require.NoError(t, bad.Set(domain.VarDepth, 3, mat.NewDense(1, testCols, nil)))
		require.NoError(t, bad.Set(testField, 3, mat.NewDense(1, testCols, nil)))
		_, err := NewCompositor(zerolog.Nop()).PlotASTE(bad, testField, testConfig())
		var re *domain.RenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "pcolormesh", re.Op)
	})
}
