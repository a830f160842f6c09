package reshape

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/leonsarmiento/NWIS-Data-Visualizer-public/internal/domain"
)

type manifestEntry struct {
	station domain.Station
}

// manifestStation is one station's entry in a generated manifest: where it
// is and which parameter codes have normalized data.
type manifestStation struct {
	Name       string   `json:"station_nm"`
	Latitude   float64  `json:"dec_lat_va"`
	Longitude  float64  `json:"dec_long_v"`
	Parameters []string `json:"parameters"`
}

// writeManifests emits the station manifest(s) the viewer scans on startup:
// stations_dv.json / stations_ir.json in separate mode, stations.json
// otherwise. Nothing is written when the run produced no series files, so
// an empty input directory yields zero outputs. Manifests carry no
// timestamps; re-runs on unchanged inputs stay byte-identical.
func (j *Job) writeManifests(written map[domain.SeriesKey]manifestEntry) error {
	if len(written) == 0 {
		return nil
	}

	if !j.opts.Separate {
		return j.writeManifest("stations.json", written, "")
	}

	if err := j.writeManifest("stations_dv.json", written, domain.KindDaily); err != nil {
		return err
	}
	return j.writeManifest("stations_ir.json", written, domain.KindInstantaneous)
}

// writeManifest builds one manifest, filtered to a kind when given.
func (j *Job) writeManifest(name string, written map[domain.SeriesKey]manifestEntry, kind domain.SeriesKind) error {
	byStation := make(map[string]*manifestStation)
	for key, entry := range written {
		if kind != "" && key.Kind != kind {
			continue
		}
		ms, ok := byStation[key.SiteNumber]
		if !ok {
			ms = &manifestStation{
				Name:      entry.station.Name,
				Latitude:  entry.station.Latitude,
				Longitude: entry.station.Longitude,
			}
			byStation[key.SiteNumber] = ms
		}
		ms.Parameters = append(ms.Parameters, key.ParameterCode)
	}

	for _, ms := range byStation {
		sort.Strings(ms.Parameters)
		ms.Parameters = dedupe(ms.Parameters)
	}

	data, err := json.MarshalIndent(byStation, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest %s: %w", name, err)
	}
	data = append(data, '\n')

	dest := filepath.Join(j.opts.OutputDir, name)
	tmp, err := os.CreateTemp(j.opts.OutputDir, "."+name+".tmp")
	if err != nil {
		return fmt.Errorf("write manifest %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write manifest %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), dest)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
