// Package catalog maps USGS parameter codes to human-readable names.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Catalog resolves parameter codes (e.g. "00060") to display names.
// A nil or empty catalog degrades to echoing the bare code.
type Catalog struct {
	names map[string]string
}

// Load reads a parameter_cd_query.csv export. The file starts with a
// one-line preamble before the real header, which carries at least the
// "parm_cd" and "parm_nm" columns. The mapping is a nicety: a missing,
// unreadable, or unexpectedly shaped file yields an empty catalog, never
// an error.
func Load(path string) *Catalog {
	f, err := os.Open(path)
	if err != nil {
		return &Catalog{}
	}
	defer f.Close()

	c, err := parse(f)
	if err != nil {
		return &Catalog{}
	}
	return c
}

func parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// Preamble line before the header.
	if _, err := cr.Read(); err != nil {
		return nil, err
	}

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	codeIdx, nameIdx := -1, -1
	for i, col := range header {
		switch col {
		case "parm_cd":
			codeIdx = i
		case "parm_nm":
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("parameter file missing parm_cd/parm_nm columns")
	}

	names := make(map[string]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) <= codeIdx || len(rec) <= nameIdx {
			continue
		}
		if rec[codeIdx] != "" && rec[nameIdx] != "" {
			names[rec[codeIdx]] = rec[nameIdx]
		}
	}

	return &Catalog{names: names}, nil
}

// Name returns the display name for a parameter code, falling back to the
// bare code when unknown.
func (c *Catalog) Name(code string) string {
	if c == nil {
		return code
	}
	if name, ok := c.names[code]; ok {
		return name
	}
	return code
}

// Label returns "code - name" when the code is known, otherwise the code.
// Matches how the parameter dropdown labels entries.
func (c *Catalog) Label(code string) string {
	if c == nil {
		return code
	}
	if name, ok := c.names[code]; ok {
		return code + " - " + name
	}
	return code
}

// Len returns the number of known parameter codes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}
