// Package main provides the ASTE map HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.ngs.io/aste-maps/internal/adapter/facet"
	"go.ngs.io/aste-maps/internal/adapter/store/mitgcm"
	"go.ngs.io/aste-maps/internal/aste"
	"go.ngs.io/aste-maps/internal/domain"
	httpHandler "go.ngs.io/aste-maps/internal/http"
	"go.ngs.io/aste-maps/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("aste-maps version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	dataPath := getEnv("DATA_PATH", "./data/aste270.nc")
	gridDir := getEnv("GRID_DIR", "")
	fields := getEnv("FIELDS", "")
	strict := getEnv("STRICT_CONVERGENCE", "") == "true"
	setupLogging(getEnv("LOG_LEVEL", "info"))

	log.Info().Str("port", port).Str("data", dataPath).Msg("starting ASTE map server")

	// Initialize dataset store.
	var opts mitgcm.Options
	if fields != "" {
		opts.Fields = strings.Split(fields, ",")
	}
	store, err := mitgcm.Open(dataPath, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open dataset")
	}
	log.Info().Str("dataset", store.Name()).Int("faces", store.NumFaces()).
		Strs("fields", store.Fields()).Msg("dataset opened")

	compositor := aste.NewCompositor(log.Logger)
	compositor.StrictConvergence = strict

	// Facet grids are optional.
	var facets *domain.FacetPaths
	if gridDir != "" {
		paths := domain.DefaultFacetPaths(gridDir)
		facets = &paths
		compositor.Assembler = facet.NewAssembler(log.Logger)
		compositor.Regridder = facet.IndexRegridder{}
		log.Info().Str("dir", gridDir).Msg("facet grids enabled")
	} else {
		log.Info().Msg("facet grids disabled (GRID_DIR not set)")
	}

	// Initialize use case.
	renderUC := usecase.NewRenderUseCase(store, compositor, facets)

	// Setup router.
	router := httpHandler.SetupRouter(renderUC, log.Logger)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("addr", addr).Msgf("health check: http://localhost:%s/health", port)
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// setupLogging configures the global logger for console output.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("ASTE Map Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  aste-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_PATH               ASTE NetCDF dataset (default: ./data/aste270.nc)")
	fmt.Println("  GRID_DIR                Directory with ASTE_FACET*.nc files (optional)")
	fmt.Println("  FIELDS                  Comma-separated data variables to serve (default: common MITgcm fields)")
	fmt.Println("  STRICT_CONVERGENCE      Fail renders whose gap fill does not converge (true/false)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Serve a synthetic dataset")
	fmt.Println("  aste-synth -out ./data && DATA_PATH=./data/aste270.nc GRID_DIR=./data aste-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                 Health check")
	fmt.Println("  GET /v1/fields              List data variables")
	fmt.Println("  GET /v1/colormaps           List colormap names")
	fmt.Println("  GET /v1/maps/aste           Render a six-face orthographic map")
	fmt.Println("  GET /v1/maps/aste/grids     Render the AC facet grid map (needs GRID_DIR)")
	fmt.Println()
	fmt.Println("MAP PARAMETERS:")
	fmt.Println("  field, figsize (e.g. 12x6), vmin, vmax, cmap, title,")
	fmt.Println("  cticks, cticks_labels (comma-separated), format (png, svg, pdf),")
	fmt.Println("  projection (ortho, platecarree or a +proj= definition; default ortho)")
	fmt.Println()
}
