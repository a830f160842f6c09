package viewer_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/catalog"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/observability"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/series"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/stations"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/viewer"
)

const (
	siteA = "01234500"
	siteB = "09876500"
)

// newTestServer builds a server over a populated normalized directory.
// siteB is in the station table but has no data.
func newTestServer(t *testing.T, scanned bool) *viewer.Server {
	t.Helper()

	dir := t.TempDir()
	dvKey := domain.SeriesKey{SiteNumber: siteA, ParameterCode: "00060", Kind: domain.KindDaily}
	irKey := domain.SeriesKey{SiteNumber: siteA, ParameterCode: "00010", Kind: domain.KindInstantaneous}

	require.NoError(t, os.WriteFile(filepath.Join(dir, dvKey.FileName()),
		[]byte("site_no,datetimeUTC,00060_Mean\n"+
			siteA+",2021-01-01,100\n"+
			siteA+",2021-01-02,110\n"+
			siteA+",2021-01-03,95\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, irKey.FileName()),
		[]byte("site_no,Activity_StartDate,Result_Measure\n"+
			siteA+",2021-04-26T15:10:00Z,12.5\n"+
			siteA+",2021-05-02,13.1\n"), 0o644))

	table := stations.NewTable([]domain.Station{
		{AgencyCode: "USGS", SiteNumber: siteA, Name: "EXAMPLE RIVER AT EXAMPLEVILLE", SiteTypeCode: "ST", Latitude: 41.5, Longitude: -72.3},
		{AgencyCode: "USGS", SiteNumber: siteB, Name: "SAMPLE CREEK NEAR SAMPLETON", SiteTypeCode: "ST", Latitude: 38.25, Longitude: -104.6},
	})

	metrics := observability.NewMetricsForTesting()
	store := series.NewStore(dir, 8, metrics, slog.Default())
	if scanned {
		require.NoError(t, store.Scan())
	}

	return viewer.NewServer(":0", table, store, catalog.Load("no-such-file"), metrics, slog.Default())
}

func get(t *testing.T, srv *viewer.Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t, false)
	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv = newTestServer(t, true)
	rec = get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIndexPage(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "NWIS Data Visualizer")
	assert.Contains(t, rec.Body.String(), "leaflet")
}

func TestStations_GeoJSON(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations?kind=dv")
	require.Equal(t, http.StatusOK, rec.Code)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates [2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	// Only the station with dv data appears; siteB has none.
	require.Len(t, fc.Features, 1)
	assert.Equal(t, siteA, fc.Features[0].Properties["site_no"])
	assert.InDelta(t, -72.3, fc.Features[0].Geometry.Coordinates[0], 1e-6)
	assert.InDelta(t, 41.5, fc.Features[0].Geometry.Coordinates[1], 1e-6)
}

func TestStations_BadKind(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations?kind=weekly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParameters(t *testing.T) {
	srv := newTestServer(t, true)

	rec := get(t, srv, "/api/stations/"+siteA+"/parameters?kind=dv")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Parameters []struct {
			Code  string `json:"code"`
			Label string `json:"label"`
		} `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Parameters, 1)
	assert.Equal(t, "00060", resp.Parameters[0].Code)

	// Known station without data: empty list, not an error.
	rec = get(t, srv, "/api/stations/"+siteB+"/parameters?kind=dv")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Parameters)

	// Unknown station: 404.
	rec = get(t, srv, "/api/stations/00000000/parameters")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeries(t *testing.T) {
	srv := newTestServer(t, true)

	rec := get(t, srv, "/api/stations/"+siteA+"/series?kind=dv&parameter=00060")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Column string `json:"column"`
		Points []struct {
			V float64 `json:"v"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "00060_Mean", resp.Column)
	require.Len(t, resp.Points, 3)
	assert.Equal(t, 100.0, resp.Points[0].V)
}

func TestSeries_NoDataIsEmptyState(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations/"+siteB+"/series?kind=dv&parameter=00060")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Points []any `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Points)
}

func TestSeries_MissingParameterQuery(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations/"+siteA+"/series?kind=dv")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartPNG(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations/"+siteA+"/chart.png?kind=dv&parameter=00060")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	// PNG magic bytes.
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body[:4])
}

func TestChartPNG_Instantaneous(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations/"+siteA+"/chart.png?kind=ir&parameter=00010")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestChartPNG_NoData(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/api/stations/"+siteB+"/chart.png?kind=dv&parameter=00060")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t, true)

	rec := get(t, srv, "/api/stations/"+siteA+"/download?kind=dv&parameter=00060")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "station_01234500_00060_dv.csv")
	assert.Contains(t, rec.Body.String(), "2021-01-02,110")

	rec = get(t, srv, "/api/stations/"+siteB+"/download?kind=dv&parameter=00060")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
