// Command reshape splits raw NWIS Data Extractor CSV exports into
// normalized per-(station, parameter, kind) files under an output
// directory, plus station manifests for the viewer.
//
// Usage:
//
//	go run ./cmd/reshape \
//	  -data-dir data/00_raw/from_NWIS_Data_Extractor \
//	  -out-dir data/normalized \
//	  -separate
//
// The station table is read from Shapefile_Stations.shp inside the data
// directory unless -shapefile points elsewhere. Files that fail to parse
// are reported and skipped; only input-resolution failures (missing data
// directory or station table) exit nonzero.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/observability"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/reshape"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reshape:", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := flag.String("data-dir", "", "directory containing the station shapefile and raw CSV exports")
	outDir := flag.String("out-dir", "", "output directory for normalized files (default <data-dir>/normalized)")
	shapefile := flag.String("shapefile", "", "station shapefile path (default <data-dir>/Shapefile_Stations.shp)")
	separate := flag.Bool("separate", false, "write per-kind station manifests (stations_dv.json, stations_ir.json)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		return fmt.Errorf("-data-dir is required")
	}

	logger := observability.NewLoggerWith(*logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := reshape.New(reshape.Options{
		InputDir:    *dataDir,
		OutputDir:   *outDir,
		StationFile: *shapefile,
		Separate:    *separate,
	}, logger)

	sum, err := job.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("stations loaded:  %d\n", sum.StationsLoaded)
	fmt.Printf("files processed:  %d\n", sum.FilesProcessed)
	fmt.Printf("files skipped:    %d\n", sum.FilesSkipped)
	fmt.Printf("files written:    %d\n", sum.FilesWritten)
	fmt.Printf("rows read:        %d\n", sum.RowsRead)
	fmt.Printf("rows written:     %d\n", sum.RowsWritten)
	fmt.Printf("rows dropped:     %d (unknown stations)\n", sum.RowsDropped)
	fmt.Printf("key conflicts:    %d\n", sum.KeyConflicts)
	fmt.Printf("duration:         %s\n", sum.Duration)
	for _, skipped := range sum.Skipped {
		fmt.Printf("  skipped %s: %s\n", skipped.Name, skipped.Reason)
	}

	return nil
}
