package viewer

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/series"
)

// queryKind reads the kind query parameter, defaulting to daily values.
func queryKind(r *http.Request) (domain.SeriesKind, error) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return domain.KindDaily, nil
	}
	return domain.ParseSeriesKind(raw)
}

// geoJSON types; only the subset the map page needs.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   pointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // lon, lat
}

// handleStations returns stations holding data of the requested kind as a
// GeoJSON FeatureCollection, ready for the Leaflet layer.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	kind, err := queryKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, site := range s.store.Stations(kind) {
		station, ok := s.table.Get(site)
		if !ok {
			// Normalized data for a station missing from the table should
			// be impossible after a reshape run; surface it rather than
			// invent a location.
			s.logger.Warn("normalized data for station not in table", "site_no", site)
			continue
		}
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Geometry: pointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{station.Longitude, station.Latitude},
			},
			Properties: map[string]any{
				"site_no":    station.SiteNumber,
				"station_nm": station.Name,
				"agency_cd":  station.AgencyCode,
				"site_tp_cd": station.SiteTypeCode,
				"parameters": s.store.Parameters(site, kind),
			},
		})
	}

	writeJSON(w, http.StatusOK, fc)
}

type parameterInfo struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// handleParameters lists the parameters a station has data for, with
// display labels resolved from the parameter catalog.
func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	kind, err := queryKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	site := r.PathValue("site")
	if !s.table.Contains(site) {
		writeError(w, http.StatusNotFound, "unknown station "+site)
		return
	}

	params := []parameterInfo{}
	for _, code := range s.store.Parameters(site, kind) {
		params = append(params, parameterInfo{Code: code, Label: s.params.Label(code)})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"site_no":    site,
		"kind":       kind,
		"parameters": params,
	})
}

// seriesRequest resolves the common (station, parameter, kind, column)
// query surface shared by the series, chart, and download handlers.
func (s *Server) seriesRequest(w http.ResponseWriter, r *http.Request) (domain.SeriesKey, bool) {
	kind, err := queryKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.SeriesKey{}, false
	}

	site := r.PathValue("site")
	if !s.table.Contains(site) {
		writeError(w, http.StatusNotFound, "unknown station "+site)
		return domain.SeriesKey{}, false
	}

	parameter := r.URL.Query().Get("parameter")
	if parameter == "" {
		writeError(w, http.StatusBadRequest, "parameter query parameter is required")
		return domain.SeriesKey{}, false
	}

	return domain.SeriesKey{SiteNumber: site, ParameterCode: parameter, Kind: kind}, true
}

type pointJSON struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
}

// handleSeries returns the readings of one value column as JSON. A key with
// no normalized file or a column with no numeric readings is an empty
// result, not an error.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	key, ok := s.seriesRequest(w, r)
	if !ok {
		return
	}

	sr, err := s.store.Load(key)
	if errors.Is(err, series.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{
			"key": key, "columns": []string{}, "points": []pointJSON{},
		})
		return
	}
	if err != nil {
		s.logger.Error("series load failed", "key", key.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load series")
		return
	}

	column := r.URL.Query().Get("column")
	if column == "" {
		column = sr.DefaultColumn()
	}

	readings, err := sr.Points(column)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points := make([]pointJSON, len(readings))
	for i, reading := range readings {
		points[i] = pointJSON{T: reading.Timestamp, V: reading.Value}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":     key,
		"column":  column,
		"label":   s.params.Label(key.ParameterCode),
		"columns": sr.ValueColumns(),
		"points":  points,
	})
}

// handleDownload streams the stored normalized CSV as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	key, ok := s.seriesRequest(w, r)
	if !ok {
		return
	}

	rc, size, err := s.store.Open(key)
	if errors.Is(err, series.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data for station "+key.SiteNumber+" parameter "+key.ParameterCode)
		return
	}
	if err != nil {
		s.logger.Error("series open failed", "key", key.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open series file")
		return
	}
	defer rc.Close()

	name := fmt.Sprintf("station_%s_%s_%s.csv", key.SiteNumber, key.ParameterCode, key.Kind)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("download interrupted", "key", key.String(), "error", err)
	}
}
