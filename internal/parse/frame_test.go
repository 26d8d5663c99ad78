package parse

import (
	"testing"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

func TestParse_MotecStyleExport(t *testing.T) {
	lines := []string{
		"MoTeC CSV File,export",
		"Venue,Okayama,,,",
		"Vehicle,MX-5,,,",
		"Time,Throttle,Brake,Speed,RPM,Gear",
		"s,%,%,km/h,rpm,-",
		"0.00,50,0,120.4,5600,3",
		"0.05,55,0,121.1,5650,3",
		"",
		"0.10,60,0,122.0,5700,3",
	}

	f, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(f.Columns) != 6 {
		t.Fatalf("expected 6 columns, got %d", len(f.Columns))
	}
	if len(f.Rows) != 3 {
		t.Fatalf("expected 3 data rows, got %d", len(f.Rows))
	}

	// The unit row must be consumed as metadata, not parsed as data.
	if f.Columns[1].Unit != "%" {
		t.Errorf("expected throttle unit %%, got %q", f.Columns[1].Unit)
	}
	if got := *f.Rows[0][3]; got != 120.4 {
		t.Errorf("expected first speed 120.4, got %v", got)
	}
}

func TestParse_NoHeader(t *testing.T) {
	lines := []string{"1,2,3,4", "5,6,7,8"}

	if _, err := Parse(lines); err == nil {
		t.Fatal("expected an error for headerless input")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestParse_DuplicateColumnNames(t *testing.T) {
	lines := []string{
		"Time,Speed,Speed,Brake",
		"0.0,120,121,0.1",
	}

	f, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if f.Columns[1].Name == f.Columns[2].Name {
		t.Errorf("duplicate columns must get distinct names, both are %q", f.Columns[1].Name)
	}
}

func TestParse_OverlongRowSkipped(t *testing.T) {
	lines := []string{
		"Time,Throttle,Brake,Speed",
		"0.0,0.5,0.0,120.4,extra,cells",
		"0.1,0.6,0.0,121.0",
	}

	f, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Rows) != 1 {
		t.Fatalf("expected misaligned row skipped, got %d rows", len(f.Rows))
	}
	if got := *f.Rows[0][0]; got != 0.1 {
		t.Errorf("expected surviving row time 0.1, got %v", got)
	}
}

func TestParse_UnparseableCellIsNil(t *testing.T) {
	lines := []string{
		"Time,Throttle,Brake,Speed",
		"0.0,n/a,0.0,120.4",
	}

	f, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Rows[0][1] != nil {
		t.Errorf("expected unparseable cell nil, got %v", *f.Rows[0][1])
	}
}

func TestFrame_Samples(t *testing.T) {
	lines := []string{
		"Time,Throttle,Speed,Gear",
		"0.00,0.5,120.4,3",
		"0.05,0.6,121.1,3",
	}

	f, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	Normalize(f)

	samples := f.Samples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].ElapsedTime != 0 {
		t.Errorf("expected elapsed time 0, got %v", samples[0].ElapsedTime)
	}
	if samples[1].SpeedKmh == nil || *samples[1].SpeedKmh != 121.1 {
		t.Errorf("expected speed 121.1 on second sample, got %v", samples[1].SpeedKmh)
	}
	if samples[0].Gear == nil || *samples[0].Gear != 3 {
		t.Errorf("expected gear 3, got %v", samples[0].Gear)
	}
}

func TestFrame_SamplesMissingTimeColumn(t *testing.T) {
	f := &Frame{
		Columns: []Column{{Name: telemetry.FieldSpeedKmh, Mapped: true}},
		Rows:    [][]*float64{{floatRef(120)}},
	}

	if samples := f.Samples(); samples != nil {
		t.Errorf("expected nil samples without a time column, got %d", len(samples))
	}
}

func TestFrame_SamplesSkipNilTime(t *testing.T) {
	f := &Frame{
		Columns: []Column{
			{Name: telemetry.FieldElapsedTime, Mapped: true},
			{Name: telemetry.FieldSpeedKmh, Mapped: true},
		},
		Rows: [][]*float64{
			{floatRef(0), floatRef(120)},
			{nil, floatRef(121)},
		},
	}

	if samples := f.Samples(); len(samples) != 1 {
		t.Errorf("expected row with nil time dropped, got %d samples", len(samples))
	}
}

func floatRef(v float64) *float64 { return &v }
