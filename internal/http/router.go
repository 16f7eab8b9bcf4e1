package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go.ngs.io/aste-maps/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(renderUC *usecase.RenderUseCase, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Allow all origins unless CORS_ALLOWED_ORIGINS is set.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.ExposeHeaders = []string{WarningsHeader}

	router.Use(cors.New(corsConfig))

	handler := NewHandler(renderUC, logger)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/fields", handler.GetFields)
	v1.GET("/colormaps", handler.GetColorMaps)

	maps := v1.Group("/maps")
	maps.GET("/aste", handler.GetMap)
	maps.GET("/aste/grids", handler.GetGridMap)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
