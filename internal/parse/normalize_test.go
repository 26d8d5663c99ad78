package parse

import (
	"math"
	"testing"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func singleColumnFrame(name, unit string, values ...float64) *Frame {
	f := &Frame{Columns: []Column{{Name: name, Unit: unit}}}
	for _, v := range values {
		v := v
		f.Rows = append(f.Rows, []*float64{&v})
	}
	return f
}

func TestNormalize_MphToKmh(t *testing.T) {
	f := singleColumnFrame("speed", "mph", 100)

	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 160.934) {
		t.Errorf("expected 100 mph = 160.934 km/h, got %v", got)
	}
	if f.Columns[0].Name != telemetry.FieldSpeedKmh {
		t.Errorf("expected column renamed to %s, got %s", telemetry.FieldSpeedKmh, f.Columns[0].Name)
	}
	if f.Columns[0].Unit != "km/h" {
		t.Errorf("expected unit km/h, got %s", f.Columns[0].Unit)
	}
}

func TestNormalize_MpsToKmh(t *testing.T) {
	f := singleColumnFrame("speed", "m/s", 10)

	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 36) {
		t.Errorf("expected 10 m/s = 36 km/h, got %v", got)
	}
}

func TestNormalize_MillisecondsToSeconds(t *testing.T) {
	f := singleColumnFrame("time", "ms", 1500)

	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 1.5) {
		t.Errorf("expected 1500 ms = 1.5 s, got %v", got)
	}
	if f.Columns[0].Name != telemetry.FieldElapsedTime {
		t.Errorf("expected column renamed to %s, got %s", telemetry.FieldElapsedTime, f.Columns[0].Name)
	}
}

func TestNormalize_PercentToRatio(t *testing.T) {
	f := singleColumnFrame("throttle", "%", 85)

	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 0.85) {
		t.Errorf("expected 85%% = 0.85, got %v", got)
	}
}

func TestNormalize_CanonicalUnitsUntouched(t *testing.T) {
	// Normalizing already-canonical data must be a no-op on the values.
	f := singleColumnFrame("speed", "km/h", 120.5)

	Normalize(f)
	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 120.5) {
		t.Errorf("expected 120.5 unchanged, got %v", got)
	}
}

func TestNormalize_UnitSuffixInColumnName(t *testing.T) {
	f := singleColumnFrame("speed_mph", "", 100)

	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 160.934) {
		t.Errorf("expected suffix-tagged column converted, got %v", got)
	}
	if f.Columns[0].Name != telemetry.FieldSpeedKmh {
		t.Errorf("expected column renamed to %s, got %s", telemetry.FieldSpeedKmh, f.Columns[0].Name)
	}
}

func TestNormalize_SuffixDoesNotDoubleConvert(t *testing.T) {
	// A column named speed_mph with an explicit mph unit tag must be
	// converted exactly once.
	f := singleColumnFrame("speed_mph", "mph", 100)

	Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 160.934) {
		t.Errorf("expected single conversion to 160.934, got %v", got)
	}
}

func TestNormalize_UnknownUnitPassedThrough(t *testing.T) {
	f := singleColumnFrame("boost", "furlongs", 42)

	report := Normalize(f)

	if got := *f.Rows[0][0]; !floatEquals(got, 42) {
		t.Errorf("expected unknown-unit value untouched, got %v", got)
	}
	if len(report.UnknownUnits) != 1 {
		t.Fatalf("expected 1 unknown unit reported, got %d", len(report.UnknownUnits))
	}
	if len(report.Warnings()) == 0 {
		t.Error("expected warnings for unknown unit")
	}
}

func TestNormalize_UnmappedColumnPreserved(t *testing.T) {
	f := singleColumnFrame("tyre_temp_fl", "c", 82.3)

	report := Normalize(f)

	if f.Columns[0].Name != "tyre_temp_fl" {
		t.Errorf("expected source name preserved, got %s", f.Columns[0].Name)
	}
	if f.Columns[0].Mapped {
		t.Error("unmapped column must not be marked mapped")
	}
	if len(report.Unmapped) != 1 || report.Unmapped[0] != "tyre_temp_fl" {
		t.Errorf("expected tyre_temp_fl reported unmapped, got %v", report.Unmapped)
	}
}

func TestNormalize_NilCellsSkipped(t *testing.T) {
	f := &Frame{
		Columns: []Column{{Name: "speed", Unit: "mph"}},
		Rows:    [][]*float64{{nil}},
	}

	Normalize(f)

	if f.Rows[0][0] != nil {
		t.Error("expected nil cell to stay nil")
	}
}
