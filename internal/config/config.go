package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultShapefileName is the station table file name the NWIS extractor
// produces inside the data directory.
const DefaultShapefileName = "Shapefile_Stations.shp"

// Config holds all viewer settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	DataDir         string
	OutputDir       string
	StationFile     string
	ParameterFile   string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	SeriesCacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("SERIES_CACHE_SIZE", 128)
	if err != nil {
		return nil, err
	}

	dataDir := envOrDefault("DATA_DIR", "data/00_raw/from_NWIS_Data_Extractor")

	cfg := &Config{
		HTTPAddr:        envOrDefault("VIEWER_ADDR", ":8080"),
		DataDir:         dataDir,
		OutputDir:       envOrDefault("OUTPUT_DIR", "data/normalized"),
		StationFile:     envOrDefault("STATION_SHAPEFILE", filepath.Join(dataDir, DefaultShapefileName)),
		ParameterFile:   envOrDefault("PARAMETER_FILE", "parameter_cd_query.csv"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		SeriesCacheSize: cacheSize,
	}

	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.StationFile == "" {
		return nil, errors.New("STATION_SHAPEFILE is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}
