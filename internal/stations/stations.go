// Package stations loads the NWIS station table from the extractor's
// shapefile and indexes it by site number.
package stations

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
)

// Required attribute columns in the shapefile's .dbf table. Names are the
// USGS ones; "dec_long_v" is "dec_long_va" truncated to the dBASE 10-byte
// field-name limit.
var requiredColumns = []string{
	"agency_cd",
	"site_no",
	"station_nm",
	"site_tp_cd",
	"dec_lat_va",
	"dec_long_v",
}

// Table is an immutable, indexed view of the station shapefile.
type Table struct {
	stations []domain.Station
	byID     map[string]domain.Station

	// SkippedRows counts attribute rows dropped at load time for failing
	// validation.
	SkippedRows int
}

// Load reads the shapefile at path (the companion .dbf is resolved by the
// shapefile library) and returns an indexed station table. A missing file
// or a missing required column is an error; individual rows with invalid
// coordinates are skipped with a warning.
func Load(path string, logger *slog.Logger) (*Table, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station shapefile %s: %w", path, err)
	}
	defer reader.Close()

	colIdx := make(map[string]int)
	for i, field := range reader.Fields() {
		colIdx[strings.ToLower(field.String())] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("station shapefile %s: missing required column %q", path, col)
		}
	}

	t := &Table{byID: make(map[string]domain.Station)}

	for row := 0; reader.Next(); row++ {
		station := domain.Station{
			AgencyCode:   strings.TrimSpace(reader.ReadAttribute(row, colIdx["agency_cd"])),
			SiteNumber:   strings.TrimSpace(reader.ReadAttribute(row, colIdx["site_no"])),
			Name:         strings.TrimSpace(reader.ReadAttribute(row, colIdx["station_nm"])),
			SiteTypeCode: strings.TrimSpace(reader.ReadAttribute(row, colIdx["site_tp_cd"])),
		}

		lat, errLat := parseCoordinate(reader.ReadAttribute(row, colIdx["dec_lat_va"]))
		lon, errLon := parseCoordinate(reader.ReadAttribute(row, colIdx["dec_long_v"]))
		if errLat != nil || errLon != nil {
			logger.Warn("skipping station row with unparseable coordinates",
				"row", row, "site_no", station.SiteNumber)
			t.SkippedRows++
			continue
		}
		station.Latitude = lat
		station.Longitude = lon

		if err := station.Validate(); err != nil {
			logger.Warn("skipping invalid station row", "row", row, "error", err)
			t.SkippedRows++
			continue
		}

		// Later rows win on duplicate site numbers; the extractor should
		// never emit duplicates, so just note it.
		if _, dup := t.byID[station.SiteNumber]; dup {
			logger.Warn("duplicate site number in station table", "site_no", station.SiteNumber)
		} else {
			t.stations = append(t.stations, station)
		}
		t.byID[station.SiteNumber] = station
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read station shapefile %s: %w", path, err)
	}

	sort.Slice(t.stations, func(i, j int) bool {
		return t.stations[i].SiteNumber < t.stations[j].SiteNumber
	})

	return t, nil
}

// NewTable builds a table directly from stations, skipping invalid entries.
// Used by callers that already hold station records (and by tests).
func NewTable(list []domain.Station) *Table {
	t := &Table{byID: make(map[string]domain.Station)}
	for _, s := range list {
		if err := s.Validate(); err != nil {
			t.SkippedRows++
			continue
		}
		if _, dup := t.byID[s.SiteNumber]; !dup {
			t.stations = append(t.stations, s)
		}
		t.byID[s.SiteNumber] = s
	}
	sort.Slice(t.stations, func(i, j int) bool {
		return t.stations[i].SiteNumber < t.stations[j].SiteNumber
	})
	return t
}

func parseCoordinate(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// All returns the stations sorted by site number. The returned slice is a
// copy and safe to modify.
func (t *Table) All() []domain.Station {
	out := make([]domain.Station, len(t.stations))
	copy(out, t.stations)
	return out
}

// Get returns the station with the given site number.
func (t *Table) Get(siteNumber string) (domain.Station, bool) {
	s, ok := t.byID[siteNumber]
	return s, ok
}

// Contains reports whether the site number exists in the table.
func (t *Table) Contains(siteNumber string) bool {
	_, ok := t.byID[siteNumber]
	return ok
}

// Len returns the number of loaded stations.
func (t *Table) Len() int { return len(t.stations) }
