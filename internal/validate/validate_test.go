package validate

import (
	"math"
	"testing"

	"github.com/pitwall/telemetry-ingest/internal/parse"
	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

func TestClamp(t *testing.T) {
	b := telemetry.Bounds{Min: 0, Max: 1}

	tests := []struct {
		name string
		v    float64
		want float64
	}{
		{"below min", -0.2, 0},
		{"above max", 1.05, 1},
		{"at min", 0, 0},
		{"at max", 1, 1},
		{"inside", 0.42, 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, b); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestClamp_Idempotent(t *testing.T) {
	b := telemetry.Bounds{Min: 0, Max: 1}
	for _, v := range []float64{-3, -0.001, 0, 0.5, 1, 1.001, 7} {
		once := Clamp(v, b)
		if twice := Clamp(once, b); twice != once {
			t.Errorf("Clamp not idempotent for %v: %v then %v", v, once, twice)
		}
		if once < b.Min || once > b.Max {
			t.Errorf("Clamp(%v) = %v outside bounds", v, once)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{160.93400, 2, 160.93},
		{1.005, 3, 1.005},
		{5600.4, 0, 5600},
		{-12.3456, 2, -12.35},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}

func twoColumnFrame(field string, values ...float64) *parse.Frame {
	f := &parse.Frame{Columns: []parse.Column{
		{Name: telemetry.FieldElapsedTime, Mapped: true},
		{Name: field, Mapped: true},
	}}
	for i, v := range values {
		ts := float64(i)
		v := v
		f.Rows = append(f.Rows, []*float64{&ts, &v})
	}
	return f
}

func TestFrame_ClampsRatios(t *testing.T) {
	f := twoColumnFrame(telemetry.FieldThrottlePosition, 1.05, -0.2, 0.5)

	report := Frame(f)

	want := []float64{1, 0, 0.5}
	for i, w := range want {
		if got := *f.Rows[i][1]; got != w {
			t.Errorf("row %d: expected throttle %v, got %v", i, w, got)
		}
	}
	if report.RejectedTotal() != 0 {
		t.Errorf("clamping must not count as rejection, got %d", report.RejectedTotal())
	}
}

func TestFrame_NullsOutOfRange(t *testing.T) {
	f := twoColumnFrame(telemetry.FieldRPM, 30000, 7200)

	report := Frame(f)

	if f.Rows[0][1] != nil {
		t.Errorf("expected out-of-range rpm nulled, got %v", *f.Rows[0][1])
	}
	if f.Rows[1][1] == nil {
		t.Error("expected in-range rpm kept")
	}
	if report.Rejected[telemetry.FieldRPM] != 1 {
		t.Errorf("expected 1 rpm rejection, got %d", report.Rejected[telemetry.FieldRPM])
	}
	if report.RowsDropped != 0 {
		t.Errorf("non-key rejection must not drop rows, got %d dropped", report.RowsDropped)
	}
}

func TestFrame_DropsRowsWithInvalidTime(t *testing.T) {
	f := twoColumnFrame(telemetry.FieldSpeedKmh, 120, 121, 122)
	bad := -5.0
	f.Rows[1][0] = &bad // outside the elapsed-time range
	f.Rows[2][0] = nil

	report := Frame(f)

	if len(f.Rows) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(f.Rows))
	}
	if report.RowsDropped != 2 {
		t.Errorf("expected 2 rows dropped, got %d", report.RowsDropped)
	}
	if got := *f.Rows[0][1]; got != 120 {
		t.Errorf("expected surviving speed 120, got %v", got)
	}
}

func TestFrame_RejectsNaNAndInf(t *testing.T) {
	f := twoColumnFrame(telemetry.FieldSpeedKmh, math.NaN(), math.Inf(1), 100)

	report := Frame(f)

	if len(f.Rows) != 3 {
		t.Fatalf("expected all rows kept, got %d", len(f.Rows))
	}
	if f.Rows[0][1] != nil || f.Rows[1][1] != nil {
		t.Error("expected NaN and Inf cells nulled")
	}
	if report.Rejected[telemetry.FieldSpeedKmh] != 2 {
		t.Errorf("expected 2 speed rejections, got %d", report.Rejected[telemetry.FieldSpeedKmh])
	}
}

func TestFrame_RoundsToDeclaredPrecision(t *testing.T) {
	f := twoColumnFrame(telemetry.FieldSpeedKmh, 160.93400001)

	Frame(f)

	if got := *f.Rows[0][1]; got != 160.93 {
		t.Errorf("expected speed rounded to 160.93, got %v", got)
	}
}

func TestFrame_Idempotent(t *testing.T) {
	f := twoColumnFrame(telemetry.FieldThrottlePosition, 1.05, 0.333333)

	Frame(f)
	first := []float64{*f.Rows[0][1], *f.Rows[1][1]}

	Frame(f)
	if *f.Rows[0][1] != first[0] || *f.Rows[1][1] != first[1] {
		t.Error("validating an already-validated frame must not change values")
	}
}

func TestFrame_UnmappedColumnsUntouched(t *testing.T) {
	ts, raw := 0.0, 99999.0
	f := &parse.Frame{
		Columns: []parse.Column{
			{Name: telemetry.FieldElapsedTime, Mapped: true},
			{Name: "tyre_temp_fl", Mapped: false},
		},
		Rows: [][]*float64{{&ts, &raw}},
	}

	Frame(f)

	if got := *f.Rows[0][1]; got != 99999 {
		t.Errorf("expected unmapped cell untouched, got %v", got)
	}
}
