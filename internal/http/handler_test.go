package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/aste-maps/internal/aste"
	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/synth"
	"go.ngs.io/aste-maps/internal/usecase"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ds, err := synth.Dataset(synth.Options{Rows: 6, Cols: 130, Step: 0.2, Hole: 2, Land: 1, Field: synth.DefaultField})
	require.NoError(t, err)
	uc := usecase.NewRenderUseCase(ds, aste.NewCompositor(zerolog.Nop()), nil)
	return SetupRouter(uc, zerolog.Nop())
}

func mapQuery(overrides map[string]string) string {
	q := url.Values{}
	q.Set("field", "THETA")
	q.Set("figsize", "4x3")
	q.Set("vmin", "5")
	q.Set("vmax", "25")
	q.Set("cmap", "coolwarm")
	q.Set("title", "THETA")
	for k, v := range overrides {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	return q.Encode()
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := get(newTestRouter(t), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetFields(t *testing.T) {
	w := get(newTestRouter(t), "/v1/fields")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Dataset string   `json:"dataset"`
		Fields  []string `json:"fields"`
		Count   int      `json:"count"`
		Grids   bool     `json:"grids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"THETA"}, body.Fields)
	assert.Equal(t, 1, body.Count)
	assert.False(t, body.Grids)
}

func TestGetColorMaps(t *testing.T) {
	w := get(newTestRouter(t), "/v1/colormaps")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ColorMaps []string `json:"colormaps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.ColorMaps, "coolwarm")
}

func TestGetMap(t *testing.T) {
	router := newTestRouter(t)

	t.Run("png", func(t *testing.T) {
		w := get(router, "/v1/maps/aste?"+mapQuery(nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Empty(t, w.Header().Get(WarningsHeader))
		assert.NotZero(t, w.Body.Len())
	})

	t.Run("svg with ticks", func(t *testing.T) {
		w := get(router, "/v1/maps/aste?"+mapQuery(map[string]string{
			"format":        "svg",
			"cticks":        "5,15,25",
			"cticks_labels": "cold,mild,warm",
		}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "mild")
	})

	t.Run("plate carree", func(t *testing.T) {
		w := get(router, "/v1/maps/aste?"+mapQuery(map[string]string{"projection": "platecarree"}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	})
}

func TestGetMap_Errors(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name    string
		path    string
		query   map[string]string
		status  int
		wantKey string
	}{
		{"missing field", "/v1/maps/aste", map[string]string{"field": ""}, http.StatusBadRequest, ""},
		{"missing vmax", "/v1/maps/aste", map[string]string{"vmax": ""}, http.StatusBadRequest, domain.KeyVMax},
		{"bad vmin", "/v1/maps/aste", map[string]string{"vmin": "cold"}, http.StatusBadRequest, domain.KeyVMin},
		{"unknown colormap", "/v1/maps/aste", map[string]string{"cmap": "nope"}, http.StatusBadRequest, domain.KeyCMap},
		{"unknown projection", "/v1/maps/aste", map[string]string{"projection": "mollweide"}, http.StatusBadRequest, domain.KeyProjection},
		{"bad format", "/v1/maps/aste", map[string]string{"format": "bmp"}, http.StatusBadRequest, ""},
		{"unknown field", "/v1/maps/aste", map[string]string{"field": "SALT"}, http.StatusNotFound, ""},
		{"grids not configured", "/v1/maps/aste/grids", nil, http.StatusNotImplemented, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, tt.path+"?"+mapQuery(tt.query))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.wantKey != "" {
				assert.Equal(t, tt.wantKey, body["key"])
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ConfigurationError{Key: "vmin"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", usecase.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrUnknownField), http.StatusNotFound},
		{domain.ErrFaceOutOfRange, http.StatusNotFound},
		{&domain.ShapeMismatchError{Face: 2}, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", &domain.NonConvergenceError{Face: 1}), http.StatusUnprocessableEntity},
		{usecase.ErrGridsUnavailable, http.StatusNotImplemented},
		{&domain.RenderError{Op: "encode", Err: fmt.Errorf("boom")}, http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}
