// Command viewer serves the NWIS Data Visualizer web UI: station map,
// time-series charts, and CSV download, backed by the normalized files
// produced by cmd/reshape.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/catalog"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/config"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/observability"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/series"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/stations"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/viewer"
)

func main() {
	addrFlag := flag.String("addr", "", "listen address (overrides VIEWER_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addrFlag != "" {
		cfg.HTTPAddr = *addrFlag
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table, err := stations.Load(cfg.StationFile, logger)
	if err != nil {
		logger.Error("failed to load station table", "error", err)
		os.Exit(1)
	}
	metrics.StationsLoaded.Set(float64(table.Len()))
	logger.Info("station table loaded", "stations", table.Len(), "skipped_rows", table.SkippedRows)

	params := catalog.Load(cfg.ParameterFile)
	if params.Len() == 0 {
		logger.Info("parameter catalog empty, falling back to bare codes", "file", cfg.ParameterFile)
	}

	store := series.NewStore(cfg.OutputDir, cfg.SeriesCacheSize, metrics, logger)
	if err := store.Scan(); err != nil {
		logger.Error("failed to index normalized data, run cmd/reshape first", "error", err)
		os.Exit(1)
	}

	srv := viewer.NewServer(cfg.HTTPAddr, table, store, params, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
