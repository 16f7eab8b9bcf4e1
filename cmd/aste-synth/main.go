// Package main writes a synthetic ASTE dataset and its facet grid files.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.ngs.io/aste-maps/internal/domain"
	"go.ngs.io/aste-maps/internal/synth"
)

func main() {
	def := synth.Default()
	outDir := flag.String("out", "./data", "Output directory for NetCDF files")
	name := flag.String("name", "aste270.nc", "Dataset file name")
	rows := flag.Int("rows", def.Rows, "Cells per face along i")
	cols := flag.Int("cols", def.Cols, "Cells per face along j")
	step := flag.Float64("step", def.Step, "Grid spacing in degrees")
	hole := flag.Int("hole", def.Hole, "Side of the zero coordinate block on faces 1, 2 and 4")
	land := flag.Int("land", def.Land, "Rows and columns of land along the face edges")
	field := flag.String("field", def.Field, "Data variable name")
	noFacets := flag.Bool("no-facets", false, "Skip the facet grid files")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	o := synth.Options{Rows: *rows, Cols: *cols, Step: *step, Hole: *hole, Land: *land, Field: *field}
	ds, err := synth.Dataset(o)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid options")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create output directory")
	}

	path := filepath.Join(*outDir, *name)
	if err := synth.WriteDataset(path, ds, []string{o.Field}); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to write dataset")
	}
	log.Info().Str("path", path).Int("rows", o.Rows).Int("cols", o.Cols).Msg("dataset written")

	if *noFacets {
		return
	}
	paths := domain.DefaultFacetPaths(*outDir)
	if err := synth.WriteFacets(paths, o); err != nil {
		log.Fatal().Err(err).Msg("failed to write facet grids")
	}
	log.Info().Str("dir", *outDir).Msg("facet grids written")
}
