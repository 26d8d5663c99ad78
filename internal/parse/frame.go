package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// Column describes one column of a parsed frame.
type Column struct {
	Name   string // Lower-snake-cased name; canonical once mapped
	Unit   string // Unit tag from the unit row or the column name, if any
	Mapped bool   // Whether Name is a canonical field name
}

// Frame is the tabular form of one raw log file: named columns over rows of
// optional numeric cells. A nil cell is a value that could not be parsed or
// was rejected by validation.
type Frame struct {
	Columns []Column
	Rows    [][]*float64
}

// Index returns the position of the named column, or -1.
func (f *Frame) Index(name string) int {
	for i, col := range f.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// TimeIndex returns the position of the elapsed-time column, or -1.
func (f *Frame) TimeIndex() int {
	if i := f.Index(telemetry.FieldElapsedTime); i >= 0 {
		return i
	}
	for i, col := range f.Columns {
		if isTimeAlias(col.Name) {
			return i
		}
	}
	return -1
}

// Samples converts the frame into canonical telemetry samples. Only mapped
// columns are carried over; the elapsed-time column must be present.
func (f *Frame) Samples() []telemetry.Sample {
	timeIdx := f.TimeIndex()
	if timeIdx < 0 {
		return nil
	}

	samples := make([]telemetry.Sample, 0, len(f.Rows))
	for _, row := range f.Rows {
		if row[timeIdx] == nil {
			continue
		}

		var s telemetry.Sample
		s.ElapsedTime = *row[timeIdx]
		for i, col := range f.Columns {
			if i == timeIdx || !col.Mapped {
				continue
			}
			s.Set(col.Name, row[i])
		}
		samples = append(samples, s)
	}
	return samples
}

// Parse turns raw file lines into a Frame. It locates the header row using
// the time-field heuristic, skips everything before it as metadata, consumes
// an optional unit row, and parses the remaining lines as numeric data.
// Returns an error wrapping ErrHeaderNotFound when the file has no
// recognizable header.
func Parse(lines []string) (*Frame, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrHeaderNotFound)
	}

	sep := GuessSeparator(lines)
	headerIdx, err := FindHeader(lines, sep)
	if err != nil {
		return nil, err
	}

	columns := parseHeader(lines[headerIdx], sep)

	dataStart := headerIdx + 1
	if dataStart < len(lines) && IsUnitRow(lines[dataStart], sep, len(columns)) {
		applyUnitRow(columns, lines[dataStart], sep)
		dataStart++
	}

	frame := &Frame{Columns: columns}
	for _, line := range lines[dataStart:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		tokens := splitLine(line, sep)
		if len(tokens) > len(columns) {
			// Malformed row, skip rather than misalign columns.
			continue
		}

		row := make([]*float64, len(columns))
		for i, token := range tokens {
			row[i] = parseNumeric(token)
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

func parseHeader(line string, sep rune) []Column {
	tokens := splitLine(line, sep)
	columns := make([]Column, len(tokens))
	seen := make(map[string]int, len(tokens))

	for i, token := range tokens {
		name, unit := cleanColumnName(token)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}

		// Duplicate names get a numeric suffix so no column shadows another.
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}

		columns[i] = Column{Name: name, Unit: unit}
	}
	return columns
}

func applyUnitRow(columns []Column, line string, sep rune) {
	tokens := splitLine(line, sep)
	for i := range columns {
		if i >= len(tokens) {
			break
		}
		unit := strings.ToLower(strings.TrimSpace(tokens[i]))
		if unit != "" && unit != "-" {
			columns[i].Unit = unit
		}
	}
}

// parseNumeric converts a cell to a float, scrubbing stray non-numeric
// characters first. Returns nil for empty or unparseable cells.
func parseNumeric(token string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
			return r
		}
		return -1
	}, token)

	if cleaned == "" {
		return nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
