// Package ingest implements the ingestion pipeline: parse, normalize,
// validate, deduplicate and load one session per uploaded log file, with an
// orchestrator fanning sessions out across a bounded worker pool.
package ingest

import (
	"fmt"
)

// State is the per-session pipeline state.
type State string

const (
	StateReceived          State = "received"
	StateParsing           State = "parsing"
	StateNormalizing       State = "normalizing"
	StateValidating        State = "validating"
	StateDuplicateChecking State = "duplicate_checking"
	StateLoading           State = "loading"

	// Terminal states. Rejected is reached only from parsing (unrecoverable
	// header failure) or duplicate checking (whole-session duplicate);
	// PartiallyLoaded when at least one chunk failed after retries.
	StateCompleted       State = "completed"
	StateRejected        State = "rejected"
	StatePartiallyLoaded State = "partially_loaded"
)

// ChunkError records one chunk that failed after exhausting retries.
type ChunkError struct {
	Index int   // Zero-based chunk index within the session
	Size  int   // Number of samples in the failed chunk
	Err   error // Last error returned by the store
}

func (c ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d samples): %v", c.Index, c.Size, c.Err)
}

// Result summarizes one session's ingestion run. Partial success is a
// first-class outcome, so every attempt reports explicit per-category counts
// rather than a bare success flag.
type Result struct {
	SessionID   string `json:"sessionID,omitempty"`
	SessionName string `json:"sessionName"`
	State       State  `json:"state"`

	DuplicateSession bool `json:"duplicateSession"` // Whole-file fingerprint hit

	RowsRead         int            `json:"rowsRead"`              // Data rows parsed from the file
	RowsDropped      int            `json:"rowsDropped"`           // Rows dropped for an invalid time field
	RowsValidated    int            `json:"rowsValidated"`         // Rows surviving validation
	RowsWritten      int            `json:"rowsWritten"`           // Rows committed to the store
	DuplicateSamples int            `json:"duplicateSamples"`      // Rows skipped on the composite key
	RejectedFields   map[string]int `json:"rejectedFields,omitempty"` // Out-of-range rejections per field

	FailedChunks []ChunkError `json:"failedChunks,omitempty"`
	Warnings     []string     `json:"warnings,omitempty"` // Unknown units, unmapped columns

	Err error `json:"-"` // Fatal error for Rejected sessions, if any
}
