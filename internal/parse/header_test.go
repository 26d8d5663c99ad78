package parse

import (
	"errors"
	"testing"
)

func TestFindHeader_MetadataBanner(t *testing.T) {
	lines := []string{
		"MoTeC CSV File",
		"Venue,Okayama",
		"Vehicle,MX-5",
		"",
		"Time,Throttle,Brake,Speed,RPM,Gear",
		"0.00,0.5,0.0,120.4,5600,3",
	}

	idx, err := FindHeader(lines, ',')
	if err != nil {
		t.Fatalf("FindHeader failed: %v", err)
	}
	if idx != 4 {
		t.Errorf("expected header at line 4, got %d", idx)
	}
}

func TestFindHeader_FirstQualifyingLineWins(t *testing.T) {
	// Both line 0 and line 2 qualify; only the first may be used.
	lines := []string{
		"Time,Throttle,Brake,Speed",
		"0.00,0.5,0.0,120.4",
		"Time,Throttle,Brake,Speed",
	}

	idx, err := FindHeader(lines, ',')
	if err != nil {
		t.Fatalf("FindHeader failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected header at line 0, got %d", idx)
	}
}

func TestFindHeader_UnitAnnotatedTimeField(t *testing.T) {
	lines := []string{
		"banner",
		`"Time (s)","Speed (mph)","Throttle","Brake"`,
	}

	idx, err := FindHeader(lines, ',')
	if err != nil {
		t.Fatalf("FindHeader failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected header at line 1, got %d", idx)
	}
}

func TestFindHeader_NotFound(t *testing.T) {
	lines := []string{
		"just,some,random,data",
		"1,2,3,4",
	}

	if _, err := FindHeader(lines, ','); !errors.Is(err, ErrHeaderNotFound) {
		t.Errorf("expected ErrHeaderNotFound, got %v", err)
	}
}

func TestFindHeader_TooFewColumns(t *testing.T) {
	// A banner mentioning "time" must not qualify as a header.
	lines := []string{
		"export time,2024-01-01",
		"Time,Throttle,Brake,Speed",
	}

	idx, err := FindHeader(lines, ',')
	if err != nil {
		t.Fatalf("FindHeader failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected header at line 1, got %d", idx)
	}
}

func TestGuessSeparator(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  rune
	}{
		{"comma", []string{"a,b,c", "1,2,3"}, ','},
		{"semicolon", []string{"a;b;c", "1;2;3"}, ';'},
		{"tab", []string{"a\tb\tc", "1\t2\t3"}, '\t'},
		{"pipe", []string{"a|b|c", "1|2|3"}, '|'},
		{"empty falls back to comma", []string{"abc"}, ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessSeparator(tt.lines); got != tt.want {
				t.Errorf("expected separator %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsUnitRow(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		columns int
		want    bool
	}{
		{"typical unit row", "s,%,%,km/h,rpm,-", 6, true},
		{"data row", "0.00,0.5,0.0,120.4,5600,3", 6, false},
		{"column count mismatch", "s,%,%", 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnitRow(tt.line, ',', tt.columns); got != tt.want {
				t.Errorf("IsUnitRow(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
