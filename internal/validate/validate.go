// Package validate applies per-field range rules to normalized frames.
//
// Control-input ratios are clamped rather than rejected: sensor overshoot
// near the physical limit is common and still informative. Fields with a
// declared valid range are nulled when outside it, and only an invalid
// elapsed-time cell drops the whole row.
package validate

import (
	"math"

	"github.com/pitwall/telemetry-ingest/internal/parse"
	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// Report counts what validation did to a frame.
type Report struct {
	RowsDropped int            // Rows removed because the time field was invalid
	Rejected    map[string]int // Out-of-range rejections per canonical field
}

func (r *Report) reject(field string) {
	if r.Rejected == nil {
		r.Rejected = make(map[string]int)
	}
	r.Rejected[field]++
}

// RejectedTotal returns the number of out-of-range rejections across all fields.
func (r *Report) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}

// Clamp pins v into the inclusive bounds.
func Clamp(v float64, b telemetry.Bounds) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Round keeps the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Frame validates all mapped columns of a frame in place. Out-of-range cells
// are nulled and counted; rows whose elapsed-time cell is invalid are removed
// entirely, since a sample without its key is unusable.
func Frame(f *parse.Frame) *Report {
	report := &Report{}
	timeIdx := f.TimeIndex()

	kept := f.Rows[:0]
	for _, row := range f.Rows {
		dropRow := false

		for i, col := range f.Columns {
			if !col.Mapped || row[i] == nil {
				continue
			}

			spec, ok := telemetry.Spec(col.Name)
			if !ok {
				continue
			}

			v := *row[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[i] = nil
				report.reject(col.Name)
				if i == timeIdx {
					dropRow = true
				}
				continue
			}

			switch {
			case spec.Clamp != nil:
				v = Clamp(v, *spec.Clamp)

			case spec.Range != nil && (v < spec.Range.Min || v > spec.Range.Max):
				row[i] = nil
				report.reject(col.Name)
				if i == timeIdx {
					dropRow = true
				}
				continue
			}

			v = Round(v, spec.Precision)
			row[i] = &v
		}

		if dropRow || (timeIdx >= 0 && row[timeIdx] == nil) {
			report.RowsDropped++
			continue
		}
		kept = append(kept, row)
	}

	f.Rows = kept
	return report
}
