package stations

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
)

// writeFixture builds a minimal station shapefile in dir. Using the same
// library to write fixtures keeps the test independent of binary testdata.
// Values are space-padded to the declared field widths because go-shp
// writes attributes into zero-filled records without padding; unpadded
// values would read back with trailing NUL bytes instead of the
// space-padded fields the dBASE format specifies.
func writeFixture(t *testing.T, dir string, stations []domain.Station) string {
	t.Helper()

	path := filepath.Join(dir, "Shapefile_Stations.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)

	fields := []shp.Field{
		shp.StringField("agency_cd", 10),
		shp.StringField("site_no", 20),
		shp.StringField("station_nm", 60),
		shp.StringField("site_tp_cd", 10),
		shp.FloatField("dec_lat_va", 16, 6),
		shp.FloatField("dec_long_v", 16, 6),
	}
	w.SetFields(fields)

	for i, s := range stations {
		w.Write(&shp.Point{X: s.Longitude, Y: s.Latitude})
		require.NoError(t, w.WriteAttribute(i, 0, fmt.Sprintf("%-10s", s.AgencyCode)))
		require.NoError(t, w.WriteAttribute(i, 1, fmt.Sprintf("%-20s", s.SiteNumber)))
		require.NoError(t, w.WriteAttribute(i, 2, fmt.Sprintf("%-60s", s.Name)))
		require.NoError(t, w.WriteAttribute(i, 3, fmt.Sprintf("%-10s", s.SiteTypeCode)))
		require.NoError(t, w.WriteAttribute(i, 4, fmt.Sprintf("%16.6f", s.Latitude)))
		require.NoError(t, w.WriteAttribute(i, 5, fmt.Sprintf("%16.6f", s.Longitude)))
	}
	w.Close()

	return path
}

func testStations() []domain.Station {
	return []domain.Station{
		{AgencyCode: "USGS", SiteNumber: "01234500", Name: "EXAMPLE RIVER AT EXAMPLEVILLE", SiteTypeCode: "ST", Latitude: 41.5, Longitude: -72.3},
		{AgencyCode: "USGS", SiteNumber: "09876500", Name: "SAMPLE CREEK NEAR SAMPLETON", SiteTypeCode: "ST", Latitude: 38.25, Longitude: -104.6},
	}
}

func TestLoad(t *testing.T) {
	path := writeFixture(t, t.TempDir(), testStations())

	table, err := Load(path, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Zero(t, table.SkippedRows)
	assert.True(t, table.Contains("01234500"))
	assert.True(t, table.Contains("09876500"))
	assert.False(t, table.Contains("00000000"))

	got, ok := table.Get("01234500")
	require.True(t, ok)
	assert.Equal(t, "EXAMPLE RIVER AT EXAMPLEVILLE", got.Name)
	assert.Equal(t, "USGS", got.AgencyCode)
	assert.Equal(t, "ST", got.SiteTypeCode)
	assert.InDelta(t, 41.5, got.Latitude, 1e-6)
	assert.InDelta(t, -72.3, got.Longitude, 1e-6)

	// All() is sorted by site number and detached from internal state.
	all := table.All()
	require.Len(t, all, 2)
	assert.Equal(t, "01234500", all[0].SiteNumber)
	all[0].SiteNumber = "mutated"
	assert.True(t, table.Contains("01234500"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.shp"), slog.Default())
	require.Error(t, err)
}

func TestLoad_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("site_no", 20)})
	w.Write(&shp.Point{X: 0, Y: 0})
	require.NoError(t, w.WriteAttribute(0, 0, "01234500"))
	w.Close()

	_, err = Load(path, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestLoad_SkipsInvalidRows(t *testing.T) {
	bad := domain.Station{AgencyCode: "USGS", SiteNumber: "11111111", Name: "OUT OF RANGE", SiteTypeCode: "ST", Latitude: 95, Longitude: -72}
	path := writeFixture(t, t.TempDir(), append(testStations(), bad))

	table, err := Load(path, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.SkippedRows)
	assert.False(t, table.Contains("11111111"))
}
