package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `# USGS parameter code query export
parm_cd,group,begin_date,parm_nm
00060,Physical,1900-01-01,"Discharge, cubic feet per second"
00010,Physical,1900-01-01,"Temperature, water, degrees Celsius"
`

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parameter_cd_query.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c := Load(writeFile(t, fixture))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "Discharge, cubic feet per second", c.Name("00060"))
	assert.Equal(t, "00060 - Discharge, cubic feet per second", c.Label("00060"))

	// Unknown codes echo back.
	assert.Equal(t, "99999", c.Name("99999"))
	assert.Equal(t, "99999", c.Label("99999"))
}

func TestLoad_MissingFileIsEmptyCatalog(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Zero(t, c.Len())
	assert.Equal(t, "00060", c.Name("00060"))
}

func TestLoad_WrongColumnsIsEmptyCatalog(t *testing.T) {
	c := Load(writeFile(t, "# preamble\na,b,c\n1,2,3\n"))
	assert.Zero(t, c.Len())
}

func TestCatalog_NilReceiver(t *testing.T) {
	var c *Catalog
	assert.Equal(t, "00060", c.Name("00060"))
	assert.Equal(t, "00060", c.Label("00060"))
	assert.Zero(t, c.Len())
}
