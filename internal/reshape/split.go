package reshape

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/stations"
)

// splitResult accumulates per-file counters for the run summary.
type splitResult struct {
	rowsRead     int
	rowsWritten  int
	rowsDropped  int
	filesWritten int
	conflicts    int
	written      map[domain.SeriesKey]struct{}
}

// splitFile parses one raw export and writes one normalized file per
// station actually present in its rows. Any parse problem (bad header,
// ragged row, malformed timestamp) fails the whole file so a partial or
// corrupted export never yields partial output.
func (j *Job) splitFile(name string, table *stations.Table) (splitResult, error) {
	res := splitResult{written: make(map[domain.SeriesKey]struct{})}

	key, err := domain.ParseRawFileName(name)
	if err != nil {
		return res, err
	}

	f, err := os.Open(filepath.Join(j.opts.InputDir, name))
	if err != nil {
		return res, err
	}
	defer f.Close()

	header, partitions, err := partitionRows(f, key.Kind)
	if err != nil {
		return res, err
	}

	// Deterministic write order keeps logs and conflict resolution stable.
	sites := make([]string, 0, len(partitions))
	for site := range partitions {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	for _, site := range sites {
		rows := partitions[site]
		res.rowsRead += len(rows)

		if !table.Contains(site) {
			res.rowsDropped += len(rows)
			continue
		}

		outKey := key.WithSite(site)
		if prev, dup := j.writtenBy[outKey]; dup {
			// Open question resolved as last-write-wins: inputs are
			// processed in sorted order, so the outcome is deterministic.
			j.logger.Warn("duplicate series key, overwriting earlier output",
				"key", outKey.String(), "previous_file", prev, "file", name)
			res.conflicts++
		}
		j.writtenBy[outKey] = name

		if err := j.writeSeriesFile(outKey, header, rows); err != nil {
			return res, err
		}
		res.rowsWritten += len(rows)
		res.filesWritten++
		res.written[outKey] = struct{}{}
	}

	return res, nil
}

// partitionRows reads a raw CSV and groups its data rows by the station
// they reference, preserving row order and verbatim fields. The header must
// carry a site_no column and the kind's timestamp column; instantaneous
// files must also carry Result_Measure. Every timestamp must parse.
func partitionRows(r io.Reader, kind domain.SeriesKind) ([]string, map[string][][]string, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	siteIdx, tsIdx := -1, -1
	hasValue := false
	tsCol := kind.TimestampColumn()
	for i, col := range header {
		switch col {
		case "site_no":
			siteIdx = i
		case tsCol:
			tsIdx = i
		case "agency_cd":
		default:
			hasValue = true
		}
	}
	if siteIdx < 0 {
		return nil, nil, fmt.Errorf("missing site_no column")
	}
	if tsIdx < 0 {
		return nil, nil, fmt.Errorf("missing %s column", tsCol)
	}
	if kind == domain.KindInstantaneous {
		hasValue = false
		for _, col := range header {
			if col == "Result_Measure" {
				hasValue = true
			}
		}
	}
	if !hasValue {
		return nil, nil, fmt.Errorf("no value column found")
	}

	partitions := make(map[string][][]string)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := domain.ParseTimestamp(rec[tsIdx]); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		site := rec[siteIdx]
		partitions[site] = append(partitions[site], rec)
	}

	return header, partitions, nil
}

// writeSeriesFile writes one normalized file atomically: the CSV is built
// in a temp file in the destination directory and renamed into place, so a
// crashed run never leaves a truncated file behind. Existing files are
// overwritten, keeping re-runs idempotent.
func (j *Job) writeSeriesFile(key domain.SeriesKey, header []string, rows [][]string) error {
	dest := filepath.Join(j.opts.OutputDir, key.FileName())

	tmp, err := os.CreateTemp(j.opts.OutputDir, "."+key.FileName()+".tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	return os.Rename(tmp.Name(), dest)
}
