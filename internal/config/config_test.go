package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "data/00_raw/from_NWIS_Data_Extractor", cfg.DataDir)
	assert.Equal(t, "data/normalized", cfg.OutputDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, DefaultShapefileName), cfg.StationFile)
	assert.Equal(t, "parameter_cd_query.csv", cfg.ParameterFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 128, cfg.SeriesCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("VIEWER_ADDR", ":9090")
	t.Setenv("DATA_DIR", "/srv/nwis")
	t.Setenv("OUTPUT_DIR", "/srv/nwis/normalized")
	t.Setenv("STATION_SHAPEFILE", "/srv/nwis/stations.shp")
	t.Setenv("PARAMETER_FILE", "/srv/nwis/params.csv")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SERIES_CACHE_SIZE", "16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "/srv/nwis", cfg.DataDir)
	assert.Equal(t, "/srv/nwis/normalized", cfg.OutputDir)
	assert.Equal(t, "/srv/nwis/stations.shp", cfg.StationFile)
	assert.Equal(t, "/srv/nwis/params.csv", cfg.ParameterFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 16, cfg.SeriesCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidCacheSize(t *testing.T) {
	t.Setenv("SERIES_CACHE_SIZE", "zero")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERIES_CACHE_SIZE")
}
