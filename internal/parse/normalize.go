package parse

import (
	"fmt"
	"strings"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// Conversion factors to canonical units: speeds to km/h, times to seconds,
// control inputs to [0, 1] ratios.
const (
	MphToKmh = 1.60934
	MpsToKmh = 3.6
)

// convertibleUnits maps recognized unit tags to the multiplication factor and
// the canonical unit the values end up in.
var convertibleUnits = map[string]struct {
	factor float64
	unit   string
}{
	"mph":  {MphToKmh, "km/h"},
	"mi/h": {MphToKmh, "km/h"},
	"m/s":  {MpsToKmh, "km/h"},
	"mps":  {MpsToKmh, "km/h"},
	"ms":   {0.001, "s"},
	"%":    {0.01, ""},
	"pct":  {0.01, ""},
}

// canonicalUnits are tags that need no conversion. Everything outside this
// set and convertibleUnits is passed through unmodified and flagged, so a
// single unrecognized unit never fails the whole file.
var canonicalUnits = map[string]struct{}{
	"km/h": {}, "kph": {}, "kmh": {},
	"s": {}, "sec": {}, "second": {}, "seconds": {},
	"deg": {}, "deg/s": {}, "rad": {},
	"rpm": {}, "1/min": {},
	"m": {}, "mm": {}, "g": {}, "nm": {}, "kw": {}, "n": {}, "kn": {},
	"bar": {}, "psi": {}, "pa": {}, "c": {}, "°c": {},
	"no": {}, "-": {}, "": {},
}

// unitSuffixes are unit tags recognized when embedded in a column name, e.g.
// "speed_mph".
var unitSuffixes = []string{"mph", "kph", "kmh", "mps", "ms"}

// Report summarizes what Normalize did to a frame, so callers can surface
// warnings without failing the ingestion.
type Report struct {
	UnknownUnits []string // "column (unit)" pairs passed through unconverted
	Unmapped     []string // columns preserved under their source name
}

// Warnings flattens the report into loggable strings.
func (r *Report) Warnings() []string {
	var warnings []string
	for _, u := range r.UnknownUnits {
		warnings = append(warnings, fmt.Sprintf("unrecognized unit on column %s", u))
	}
	for _, c := range r.Unmapped {
		warnings = append(warnings, fmt.Sprintf("unmapped column %s", c))
	}
	return warnings
}

// Normalize rescales unit-tagged columns to canonical units and renames
// source columns into the canonical field vocabulary, in place. Unknown unit
// tags and unmapped columns survive untouched and are reported; no signal is
// silently lost.
func Normalize(f *Frame) *Report {
	report := &Report{}

	for i := range f.Columns {
		col := &f.Columns[i]

		if base, unit, ok := splitUnitSuffix(col.Name); ok && (col.Unit == "" || col.Unit == unit) {
			col.Name = base
			col.Unit = unit
		}

		switch conv, convertible := convertibleUnits[col.Unit]; {
		case convertible:
			scaleColumn(f.Rows, i, conv.factor)
			col.Unit = conv.unit

		default:
			if _, ok := canonicalUnits[col.Unit]; !ok {
				report.UnknownUnits = append(report.UnknownUnits, fmt.Sprintf("%s (%s)", col.Name, col.Unit))
			}
		}

		if canonical, ok := telemetry.Canonical(col.Name); ok {
			col.Name = canonical
			col.Mapped = true
		} else {
			report.Unmapped = append(report.Unmapped, col.Name)
		}
	}

	return report
}

func splitUnitSuffix(name string) (base, unit string, ok bool) {
	for _, suffix := range unitSuffixes {
		if rest, found := strings.CutSuffix(name, "_"+suffix); found && rest != "" {
			return rest, suffix, true
		}
	}
	return "", "", false
}

func scaleColumn(rows [][]*float64, col int, factor float64) {
	for _, row := range rows {
		if row[col] != nil {
			v := *row[col] * factor
			row[col] = &v
		}
	}
}
