package parse

import (
	"errors"
	"strings"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// ErrHeaderNotFound is returned when no line within the scan window qualifies
// as a column-header row. The file as a whole cannot be ingested.
var ErrHeaderNotFound = errors.New("header row not found")

const (
	// headerScanWindow defines how many leading lines are scanned for the
	// header row. Metadata banners emitted by simulators vary in length but
	// never come close to this.
	headerScanWindow = 100

	// minHeaderColumns is the minimum number of columns for a line to be
	// considered a header. Filters out banner lines that happen to mention
	// "time".
	minHeaderColumns = 4
)

var separators = []rune{',', '\t', ';', '|'}

// GuessSeparator inspects the leading lines and returns the most plausible
// column separator. Falls back to comma when nothing stands out.
func GuessSeparator(lines []string) rune {
	sample := lines
	if len(sample) > 30 {
		sample = sample[:30]
	}

	best := ','
	bestCount := 0
	for _, sep := range separators {
		count := 0
		for _, line := range sample {
			count += strings.Count(line, string(sep))
		}
		if count > bestCount {
			best = sep
			bestCount = count
		}
	}
	return best
}

// FindHeader scans lines top-to-bottom and returns the index of the true
// column-header row. A line qualifies when, case-insensitively and with unit
// annotations stripped, it contains a recognized time-field alias and has
// enough columns. Lines before the first qualifying one are metadata and are
// discarded by the caller.
func FindHeader(lines []string, sep rune) (int, error) {
	limit := len(lines)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}

	for i := 0; i < limit; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}

		tokens := splitLine(lines[i], sep)
		if len(tokens) < minHeaderColumns {
			continue
		}

		for _, token := range tokens {
			name, _ := cleanColumnName(token)
			if isTimeAlias(name) {
				return i, nil
			}
		}
	}

	return 0, ErrHeaderNotFound
}

func isTimeAlias(name string) bool {
	for _, alias := range telemetry.TimeAliases {
		if name == alias {
			return true
		}
	}
	return false
}

// unitTokens is the vocabulary used to recognize a unit row directly under
// the header. MoTeC exports carry one, iRacing and ACC do not.
var unitTokens = map[string]struct{}{
	"s": {}, "sec": {}, "second": {}, "seconds": {},
	"ms": {}, "millisecond": {}, "milliseconds": {},
	"km/h": {}, "kph": {}, "kmh": {}, "m/s": {}, "mps": {}, "mph": {}, "mi/h": {},
	"deg": {}, "deg/s": {}, "rad": {}, "%": {}, "no": {}, "1/min": {}, "rpm": {},
	"c": {}, "°c": {}, "mm": {}, "m": {}, "bar": {}, "psi": {}, "g": {},
	"n": {}, "nm": {}, "kn": {}, "kw": {}, "pa": {}, "-": {}, "": {},
}

// IsUnitRow reports whether the tokens look like a unit row: a large enough
// share of them drawn from the unit vocabulary.
func IsUnitRow(line string, sep rune, columns int) bool {
	tokens := splitLine(line, sep)
	if len(tokens) == 0 || len(tokens) != columns {
		return false
	}

	matched := 0
	for _, token := range tokens {
		t := strings.ToLower(strings.TrimSpace(token))
		if _, ok := unitTokens[t]; ok {
			matched++
			continue
		}
		if rest, found := strings.CutSuffix(t, "/s"); found {
			if _, ok := unitTokens[rest]; ok {
				matched++
			}
		}
	}

	return float64(matched)/float64(len(tokens)) >= 0.4
}

func splitLine(line string, sep rune) []string {
	tokens := strings.Split(strings.TrimRight(line, "\r\n"), string(sep))
	for i, token := range tokens {
		tokens[i] = strings.Trim(strings.TrimSpace(token), `"'`)
	}
	return tokens
}

// cleanColumnName lowers and snake-cases a raw header token, extracting a
// trailing parenthesised unit annotation if present: "Speed (mph)" yields
// ("speed", "mph").
func cleanColumnName(token string) (name, unit string) {
	token = strings.TrimSpace(token)

	if open := strings.Index(token, "("); open >= 0 {
		if end := strings.Index(token[open:], ")"); end > 0 {
			unit = strings.ToLower(strings.TrimSpace(token[open+1 : open+end]))
			token = strings.TrimSpace(token[:open] + token[open+end+1:])
		}
	}

	name = strings.ToLower(token)
	name = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "_")
	return name, unit
}
