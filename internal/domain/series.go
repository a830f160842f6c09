package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// SeriesKind distinguishes the two NWIS export flavors.
type SeriesKind string

const (
	// KindDaily marks daily-value series ("dv" files): one aggregated
	// reading per day.
	KindDaily SeriesKind = "dv"

	// KindInstantaneous marks instantaneous water-quality series
	// ("ir" files): irregularly sampled readings.
	KindInstantaneous SeriesKind = "ir"
)

// ParseSeriesKind validates a kind string from a query or flag.
func ParseSeriesKind(s string) (SeriesKind, error) {
	switch SeriesKind(s) {
	case KindDaily, KindInstantaneous:
		return SeriesKind(s), nil
	default:
		return "", fmt.Errorf("unknown series kind %q (want %q or %q)", s, KindDaily, KindInstantaneous)
	}
}

// TimestampColumn returns the header name of the kind's timestamp column.
func (k SeriesKind) TimestampColumn() string {
	if k == KindInstantaneous {
		return "Activity_StartDate"
	}
	return "datetimeUTC"
}

// SeriesKey identifies one measurement series: a station, a parameter, and
// the export kind. Keys are parsed once from raw file names and passed
// around explicitly instead of re-deriving them from paths at every
// consumption point.
type SeriesKey struct {
	SiteNumber    string     `json:"site_no"`
	ParameterCode string     `json:"parm_cd"`
	Kind          SeriesKind `json:"kind"`
}

var (
	dvFileRe = regexp.MustCompile(`^station_([0-9A-Za-z]+)_parameter_([0-9A-Za-z]+)_dv\.csv$`)
	irFileRe = regexp.MustCompile(`^station_([0-9A-Za-z]+)_WaterQualityData_parameter_([0-9A-Za-z]+)_ir\.csv$`)
)

// ParseRawFileName recovers the series key encoded in a raw export's base
// name. Names matching neither NWIS pattern return an error; the caller
// decides whether that means "skip" (stray file in the directory) or "fail".
func ParseRawFileName(name string) (SeriesKey, error) {
	if m := dvFileRe.FindStringSubmatch(name); m != nil {
		return SeriesKey{SiteNumber: m[1], ParameterCode: m[2], Kind: KindDaily}, nil
	}
	if m := irFileRe.FindStringSubmatch(name); m != nil {
		return SeriesKey{SiteNumber: m[1], ParameterCode: m[2], Kind: KindInstantaneous}, nil
	}
	return SeriesKey{}, fmt.Errorf("file name %q does not match an NWIS export pattern", name)
}

// FileName returns the deterministic normalized-output name for the key.
// The raw naming convention is preserved so downstream tooling built against
// the extractor's layout keeps working.
func (k SeriesKey) FileName() string {
	if k.Kind == KindInstantaneous {
		return fmt.Sprintf("station_%s_WaterQualityData_parameter_%s_ir.csv", k.SiteNumber, k.ParameterCode)
	}
	return fmt.Sprintf("station_%s_parameter_%s_dv.csv", k.SiteNumber, k.ParameterCode)
}

// WithSite returns a copy of the key pointing at a different station.
// Used when a raw file contains rows for stations other than the one in
// its name.
func (k SeriesKey) WithSite(siteNumber string) SeriesKey {
	k.SiteNumber = siteNumber
	return k
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.SiteNumber, k.ParameterCode, k.Kind)
}

// Reading is one timestamped value of a series.
type Reading struct {
	Timestamp time.Time `json:"t"`
	Value     float64   `json:"v"`
}

// ParseTimestamp parses an NWIS timestamp value. The extractor emits both
// bare dates and full ISO-8601 instants, sometimes within one file, so both
// are accepted. Bare dates are taken as midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := iso8601.ParseString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
