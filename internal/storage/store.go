package storage

import (
	"context"
	"errors"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// ErrSessionNotFound is returned when a session lookup matches no row.
var ErrSessionNotFound = errors.New("session not found")

// Store provides an interface for managing telemetry session storage.
// It owns the two logical write operations of the ingestion pipeline and the
// read contract consumed by downstream stages. All write operations are
// atomic and idempotent under retry: session uniqueness is guarded by the
// fingerprint constraint, sample uniqueness by the composite
// (session_id, elapsed_time) constraint.
type Store interface {
	// InsertSessionIfAbsent creates a session row unless one with the same
	// content fingerprint already exists. The lookup is a fast path only;
	// the persisted UNIQUE constraint on the fingerprint is the final
	// arbiter under concurrent writers, and a constraint violation at
	// insert time reports duplicate exactly like a lookup hit.
	//
	// Returns:
	//   - created: true if the session was inserted, false for a duplicate
	//   - error: if the operation fails or context is cancelled
	InsertSessionIfAbsent(ctx context.Context, session *telemetry.Session) (created bool, err error)

	// Session retrieves a session by its ID. Returns an error wrapping
	// ErrSessionNotFound when no such session exists.
	Session(ctx context.Context, id string) (*telemetry.Session, error)

	// Sessions returns all stored sessions ordered by creation time.
	Sessions(ctx context.Context) ([]*telemetry.Session, error)

	// DeleteSession removes a session and, through the cascading foreign
	// key, all samples it owns.
	DeleteSession(ctx context.Context, id string) error

	// BatchInsertSamples bulk-inserts one chunk of samples for a session.
	// Rows conflicting on (session_id, elapsed_time) are skipped, not
	// errored, and reported in the duplicates count.
	//
	// Returns:
	//   - inserted: number of rows actually written
	//   - duplicates: number of rows skipped as composite-key conflicts
	//   - error: if the chunk as a whole fails
	BatchInsertSamples(ctx context.Context, sessionID string, samples []telemetry.Sample) (inserted, duplicates int, err error)

	// ReadSamples returns an iterator over a session's committed samples in
	// elapsed-time order. The reader must be closed after use.
	ReadSamples(ctx context.Context, sessionID string, opts ...ReaderOption) (SampleReader, error)

	// Close releases database resources. The store must not be used after.
	Close() error
}
