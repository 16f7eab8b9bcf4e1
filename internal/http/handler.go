package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/usecase"
)

// WarningsHeader carries gap fill warnings of a rendered map.
const WarningsHeader = "X-Render-Warnings"

// plotKeys are the query parameters mapped onto plot configuration keys.
var plotKeys = []string{
	domain.KeyFigSize,
	domain.KeyVMin,
	domain.KeyVMax,
	domain.KeyCMap,
	domain.KeyTitle,
	domain.KeyCTicks,
	domain.KeyCTickLabels,
	domain.KeyProjection,
}

// Handler handles HTTP requests for ASTE maps.
type Handler struct {
	renderUC *usecase.RenderUseCase
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(renderUC *usecase.RenderUseCase, logger zerolog.Logger) *Handler {
	return &Handler{
		renderUC: renderUC,
		logger:   logger,
	}
}

// GetMap handles GET /v1/maps/aste.
func (h *Handler) GetMap(c *gin.Context) {
	h.render(c, false)
}

// GetGridMap handles GET /v1/maps/aste/grids.
func (h *Handler) GetGridMap(c *gin.Context) {
	h.render(c, true)
}

func (h *Handler) render(c *gin.Context, grids bool) {
	field := c.Query("field")
	if field == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field parameter is required"})
		return
	}

	// Only keys present in the query reach the config, so missing ones are
	// reported by name.
	m := make(map[string]any, len(plotKeys))
	for _, key := range plotKeys {
		if v, ok := c.GetQuery(key); ok {
			m[key] = v
		}
	}
	cfg, err := domain.PlotConfigFromMap(m)
	if err != nil {
		h.fail(c, err)
		return
	}

	start := time.Now()
	resp, err := h.renderUC.Execute(usecase.RenderRequest{
		Field:  field,
		Config: cfg,
		Format: c.DefaultQuery("format", "png"),
		Grids:  grids,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info().Str("field", field).Bool("grids", grids).Str("format", resp.Format).
		Int("bytes", len(resp.Image)).Int("warnings", len(resp.Warnings)).
		Dur("elapsed", time.Since(start)).Msg("map rendered")

	if len(resp.Warnings) > 0 {
		c.Header(WarningsHeader, strings.Join(resp.Warnings, "; "))
	}
	c.Data(http.StatusOK, resp.ContentType, resp.Image)
}

// fail writes err with the status matching its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	body := gin.H{"error": err.Error()}
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		body["key"] = cfgErr.Key
	}
	c.JSON(status, body)
}

// StatusOf maps an error to an HTTP status code.
func StatusOf(err error) int {
	var (
		cfgErr   *domain.ConfigurationError
		shapeErr *domain.ShapeMismatchError
		nceErr   *domain.NonConvergenceError
	)
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownField), errors.Is(err, domain.ErrFaceOutOfRange):
		return http.StatusNotFound
	case errors.As(err, &shapeErr), errors.As(err, &nceErr), errors.Is(err, domain.ErrEmptySelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrGridsUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// GetFields handles GET /v1/fields.
func (h *Handler) GetFields(c *gin.Context) {
	fields := h.renderUC.Fields()
	c.JSON(http.StatusOK, gin.H{
		"dataset": h.renderUC.DatasetName(),
		"fields":  fields,
		"count":   len(fields),
		"grids":   h.renderUC.GridsAvailable(),
	})
}

// GetColorMaps handles GET /v1/colormaps.
func (h *Handler) GetColorMaps(c *gin.Context) {
	names := h.renderUC.ColorMaps()
	c.JSON(http.StatusOK, gin.H{
		"colormaps": names,
		"count":     len(names),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
