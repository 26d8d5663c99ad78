// Package dedup computes session content fingerprints.
//
// The fingerprint is tier one of the two-tier deduplication scheme: a
// whole-file short-circuit that catches byte-identical re-uploads before any
// sample is written. Tier two is the persisted (session, elapsed_time)
// uniqueness constraint in storage, which guards against partial overlap a
// whole-file hash would miss.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/pitwall/telemetry-ingest/internal/parse"
)

// Fingerprint returns the SHA-256 hex digest of the frame's normalized
// content. Columns are serialized in sorted name order with a fixed numeric
// format, so the digest depends only on content, never on source column
// ordering or the session display name.
func Fingerprint(f *parse.Frame) string {
	order := make([]int, len(f.Columns))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return f.Columns[order[a]].Name < f.Columns[order[b]].Name
	})

	h := sha256.New()
	var sb strings.Builder

	for n, i := range order {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(f.Columns[i].Name)
	}
	sb.WriteByte('\n')
	h.Write([]byte(sb.String()))

	for _, row := range f.Rows {
		sb.Reset()
		for n, i := range order {
			if n > 0 {
				sb.WriteByte(',')
			}
			if row[i] != nil {
				sb.WriteString(strconv.FormatFloat(*row[i], 'g', -1, 64))
			}
		}
		sb.WriteByte('\n')
		h.Write([]byte(sb.String()))
	}

	return hex.EncodeToString(h.Sum(nil))
}
