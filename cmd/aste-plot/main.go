// Package main renders an ASTE dataset variable to an image file.
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
	"go.ngs.io/aste-maps/internal/render"
)

func main() {
	dataPath := flag.String("data", "./data/aste270.nc", "ASTE NetCDF dataset")
	field := flag.String("field", "THETA", "Data variable to plot")
	configPath := flag.String("config", "./plot.yaml", "YAML plot configuration (figsize, vmin, vmax, cmap, title, cticks, cticks_labels, projection)")
	out := flag.String("out", "aste.png", "Output file; the extension selects png, svg or pdf")
	grids := flag.Bool("grids", false, "Regrid onto the facet grids and draw the AC grid")
	gridDir := flag.String("grid-dir", "./data", "Directory with ASTE_FACET*.nc files (with -grids)")
	strict := flag.Bool("strict", false, "Fail when gap filling does not converge")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := domain.LoadPlotConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid plot configuration")
	}

	store, err := mitgcm.Open(*dataPath, mitgcm.Options{Fields: []string{*field}})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open dataset")
	}

	c := aste.NewCompositor(log.Logger)
	c.StrictConvergence = *strict

	var fig *render.Figure
	if *grids {
		c.Assembler = facet.NewAssembler(log.Logger)
		c.Regridder = facet.IndexRegridder{}
		fig, err = c.PlotASTEWithGrids(store, *field, cfg, domain.DefaultFacetPaths(*gridDir))
	} else {
		fig, err = c.PlotASTE(store, *field, cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to render map")
	}
	for _, w := range fig.Warnings {
		log.Warn().Err(w).Msg("rendered with warning")
	}

	if err := fig.Save(*out); err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("failed to save figure")
	}
	fmt.Printf("Wrote %s (%s, %s)\n", *out, *field, strings.TrimSpace(cfg.Title))
}
