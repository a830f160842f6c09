// Package series is the viewer's read path over the normalized file tree
// produced by the reshape step.
package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bluele/gcache"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/observability"
)

// ErrNotFound marks a (station, parameter, kind) combination with no
// normalized file. Handlers render it as an informational empty state,
// not a failure.
var ErrNotFound = errors.New("no data for series")

// Series is one loaded normalized file.
type Series struct {
	Key    domain.SeriesKey
	Header []string
	Rows   [][]string
}

// metaColumns are dv columns that never hold measured values.
var metaColumns = map[string]bool{
	"agency_cd":   true,
	"site_no":     true,
	"datetimeUTC": true,
}

// ValueColumns lists the plottable columns for the series, in header order.
func (s *Series) ValueColumns() []string {
	if s.Key.Kind == domain.KindInstantaneous {
		return []string{"Result_Measure"}
	}
	var cols []string
	for _, col := range s.Header {
		if !metaColumns[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

// DefaultColumn returns the column plotted when the caller names none.
func (s *Series) DefaultColumn() string {
	cols := s.ValueColumns()
	if len(cols) == 0 {
		return ""
	}
	return cols[0]
}

// Points extracts (timestamp, value) pairs for one value column. Rows whose
// value is empty or non-numeric are skipped; the reshape step already
// guaranteed every timestamp parses.
func (s *Series) Points(column string) ([]domain.Reading, error) {
	colIdx, tsIdx := -1, -1
	tsCol := s.Key.Kind.TimestampColumn()
	for i, col := range s.Header {
		switch col {
		case column:
			colIdx = i
		case tsCol:
			tsIdx = i
		}
	}
	if colIdx < 0 {
		return nil, fmt.Errorf("series %s: no column %q", s.Key, column)
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("series %s: no timestamp column %q", s.Key, tsCol)
	}

	readings := make([]domain.Reading, 0, len(s.Rows))
	for _, row := range s.Rows {
		ts, err := domain.ParseTimestamp(row[tsIdx])
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Key, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx]), 64)
		if err != nil {
			continue
		}
		readings = append(readings, domain.Reading{Timestamp: ts, Value: v})
	}
	return readings, nil
}

// Store serves stations, parameters, and series from a normalized
// directory. Loads go through an LRU cache keyed by file identity
// (path, size, mtime), so a re-run of the reshape step invalidates
// entries without any explicit flush.
type Store struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
	cache   gcache.Cache

	mu    sync.RWMutex
	ready bool
	// byKind[kind][site] -> sorted parameter codes
	byKind map[domain.SeriesKind]map[string][]string
}

// NewStore creates a store over dir with an LRU series cache of the given
// size. Call Scan before serving.
func NewStore(dir string, cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		dir:     dir,
		logger:  logger,
		metrics: metrics,
		cache:   gcache.New(cacheSize).LRU().Build(),
		byKind:  make(map[domain.SeriesKind]map[string][]string),
	}
}

// Scan indexes the normalized directory: every file matching an export
// pattern becomes a (station, parameter, kind) entry. Stray files are
// ignored. Safe to call again to pick up a fresh reshape run.
func (s *Store) Scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scan normalized directory: %w", err)
	}

	byKind := map[domain.SeriesKind]map[string][]string{
		domain.KindDaily:         {},
		domain.KindInstantaneous: {},
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, err := domain.ParseRawFileName(e.Name())
		if err != nil {
			continue
		}
		byKind[key.Kind][key.SiteNumber] = append(byKind[key.Kind][key.SiteNumber], key.ParameterCode)
		count++
	}
	for _, sites := range byKind {
		for _, params := range sites {
			sort.Strings(params)
		}
	}

	s.mu.Lock()
	s.byKind = byKind
	s.ready = true
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.StoreReady.Set(1)
	}
	s.logger.Info("normalized data indexed", "dir", s.dir, "series_files", count)
	return nil
}

// Ready reports whether Scan has completed successfully.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Stations returns the site numbers with data of the given kind, sorted.
func (s *Store) Stations(kind domain.SeriesKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sites := make([]string, 0, len(s.byKind[kind]))
	for site := range s.byKind[kind] {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Parameters returns the parameter codes available for a station and kind.
func (s *Store) Parameters(site string, kind domain.SeriesKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := s.byKind[kind][site]
	out := make([]string, len(params))
	copy(out, params)
	return out
}

// Load returns the parsed series for a key, via the cache.
func (s *Store) Load(key domain.SeriesKey) (*Series, error) {
	path := filepath.Join(s.dir, key.FileName())

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.countLoad("not_found")
			return nil, fmt.Errorf("series %s: %w", key, ErrNotFound)
		}
		s.countLoad("error")
		return nil, fmt.Errorf("series %s: %w", key, err)
	}

	// File identity in the key means a regenerated file misses the cache
	// and the stale entry ages out of the LRU.
	cacheKey := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if v, err := s.cache.Get(cacheKey); err == nil {
		s.countCache("hit")
		return v.(*Series), nil
	}
	s.countCache("miss")

	series, err := readSeriesFile(path, key)
	if err != nil {
		s.countLoad("error")
		return nil, err
	}
	s.countLoad("success")

	// Set only fails for expirable cache configs; ignore best-effort cache errors.
	_ = s.cache.Set(cacheKey, series)
	return series, nil
}

// Open returns the raw normalized file for download, with its size.
func (s *Store) Open(key domain.SeriesKey) (io.ReadCloser, int64, error) {
	path := filepath.Join(s.dir, key.FileName())
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("series %s: %w", key, ErrNotFound)
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func readSeriesFile(path string, key domain.SeriesKey) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", key, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("series %s: read header: %w", key, err)
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", key, err)
	}

	return &Series{Key: key, Header: header, Rows: rows}, nil
}

func (s *Store) countLoad(outcome string) {
	if s.metrics != nil {
		s.metrics.SeriesLoads.WithLabelValues(outcome).Inc()
	}
}

func (s *Store) countCache(result string) {
	if s.metrics != nil {
		s.metrics.SeriesCache.WithLabelValues(result).Inc()
	}
}
