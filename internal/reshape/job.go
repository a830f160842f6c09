// Package reshape implements the batch step that splits raw NWIS CSV
// exports into normalized per-(station, parameter, kind) files.
//
// The job is a single-pass extract-transform-load loop over the input
// directory: parse each raw file's name into a series key, partition its
// rows by the station they actually reference, drop rows for stations
// absent from the station table, and write each partition atomically to
// the output directory. A file that fails to parse is reported and
// skipped; it never aborts the rest of the run.
package reshape

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/stations"
)

// Options configures a reshape run.
type Options struct {
	// InputDir holds the raw extractor output: the station shapefile and
	// the raw CSV exports.
	InputDir string

	// OutputDir receives the normalized files. Created if absent.
	OutputDir string

	// StationFile is the station shapefile path. Defaults to
	// Shapefile_Stations.shp inside InputDir.
	StationFile string

	// Separate writes per-kind station manifests (stations_dv.json and
	// stations_ir.json) instead of one combined stations.json.
	Separate bool
}

// Job executes one reshape run.
type Job struct {
	opts   Options
	logger *slog.Logger

	// conflict policy bookkeeping: first writer of each key this run.
	writtenBy map[domain.SeriesKey]string
}

// SkippedFile records a raw file the run reported and moved past.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Summary is the user-facing result of a run. Skipped files are warnings,
// not failures; the run still exits zero.
type Summary struct {
	FilesProcessed int
	FilesSkipped   int
	FilesWritten   int
	RowsRead       int
	RowsWritten    int
	RowsDropped    int
	KeyConflicts   int
	StationsLoaded int
	Skipped        []SkippedFile
	Duration       time.Duration
}

// New creates a reshape job. The zero StationFile defaults to the
// extractor's conventional name inside InputDir.
func New(opts Options, logger *slog.Logger) *Job {
	if opts.StationFile == "" {
		opts.StationFile = filepath.Join(opts.InputDir, "Shapefile_Stations.shp")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(opts.InputDir, "normalized")
	}
	return &Job{
		opts:      opts,
		logger:    logger,
		writtenBy: make(map[domain.SeriesKey]string),
	}
}

// Run performs the split. Errors returned here are fatal configuration
// problems (missing input directory, missing station table, un-creatable
// output directory) and occur before any output is written. All per-file
// problems are absorbed into the Summary.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	start := domain.Now()
	var sum Summary

	info, err := os.Stat(j.opts.InputDir)
	if err != nil {
		return sum, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("input directory %s: not a directory", j.opts.InputDir)
	}

	table, err := stations.Load(j.opts.StationFile, j.logger)
	if err != nil {
		return sum, err
	}
	sum.StationsLoaded = table.Len()

	if err := os.MkdirAll(j.opts.OutputDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output directory: %w", err)
	}

	rawFiles, err := listRawFiles(j.opts.InputDir)
	if err != nil {
		return sum, err
	}

	written := make(map[domain.SeriesKey]manifestEntry)

	for _, name := range rawFiles {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := j.splitFile(name, table)
		if err != nil {
			j.logger.Warn("skipping raw file", "file", name, "error", err)
			sum.FilesSkipped++
			sum.Skipped = append(sum.Skipped, SkippedFile{Name: name, Reason: err.Error()})
			continue
		}

		sum.FilesProcessed++
		sum.RowsRead += res.rowsRead
		sum.RowsWritten += res.rowsWritten
		sum.RowsDropped += res.rowsDropped
		sum.FilesWritten += res.filesWritten
		sum.KeyConflicts += res.conflicts

		if res.rowsDropped > 0 {
			j.logger.Warn("dropped rows referencing unknown stations",
				"file", name, "rows_dropped", res.rowsDropped)
		}

		for key := range res.written {
			station, _ := table.Get(key.SiteNumber)
			written[key] = manifestEntry{station: station}
		}
	}

	if err := j.writeManifests(written); err != nil {
		return sum, err
	}

	sum.Duration = domain.Now().Sub(start)
	j.logger.Info("reshape run complete",
		"files_processed", sum.FilesProcessed,
		"files_skipped", sum.FilesSkipped,
		"files_written", sum.FilesWritten,
		"rows_read", sum.RowsRead,
		"rows_written", sum.RowsWritten,
		"rows_dropped", sum.RowsDropped,
		"key_conflicts", sum.KeyConflicts,
		"duration", sum.Duration,
	)

	return sum, nil
}

// listRawFiles returns the base names in dir matching either NWIS export
// pattern, sorted lexicographically so the duplicate-key policy
// (last write wins) is deterministic across runs.
func listRawFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := domain.ParseRawFileName(e.Name()); err != nil {
			continue // shapefile companions, manifests, stray files
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
