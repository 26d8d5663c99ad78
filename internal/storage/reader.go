package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

const defaultReaderBatchSize = 1000

// SampleReader provides an iterator-based interface for reading a session's
// committed samples in elapsed-time order, with optional time filtering.
// Large sessions are paged through in batches so memory stays bounded.
type SampleReader interface {
	// Next advances the iterator and returns true if there is another sample
	// to read, false when the iteration is complete or an error occurred.
	Next(ctx context.Context) bool

	// Current returns the current sample. If called after Next() returns
	// false, the behavior is undefined.
	Current() *telemetry.Sample

	// Error returns any error that occurred during iteration. When Next()
	// returns false, Error() distinguishes end of data from failure.
	Error() error

	// Close releases database resources. The reader must not be used after.
	Close() error
}

// ReaderOption configures a SampleReader with filtering criteria.
type ReaderOption func(*SqliteSampleReader)

// WithStartTime excludes samples with elapsed time before t seconds.
func WithStartTime(t float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.startTime = t
	}
}

// WithEndTime excludes samples with elapsed time after t seconds.
func WithEndTime(t float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.endTime = t
	}
}

// WithTimeRange sets both start and end time filters.
func WithTimeRange(start, end float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.startTime = start
		r.endTime = end
	}
}

// WithBatchSize sets how many samples are fetched per page.
func WithBatchSize(n int) ReaderOption {
	return func(r *SqliteSampleReader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// SqliteSampleReader is the SQLite-backed SampleReader implementation.
// It is not safe for concurrent use; each reader instance should only be
// used from a single goroutine.
type SqliteSampleReader struct {
	db        *sql.DB
	sessionID string
	startTime float64
	endTime   float64
	batchSize int

	buffer  []telemetry.Sample
	pos     int
	offset  int
	current telemetry.Sample
	done    bool
	err     error
}

func newSqliteSampleReader(ctx context.Context, db *sql.DB, sessionID string, opts ...ReaderOption) (*SqliteSampleReader, error) {
	r := &SqliteSampleReader{
		db:        db,
		sessionID: sessionID,
		startTime: 0,
		endTime:   math.MaxFloat64,
		batchSize: defaultReaderBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.startTime > r.endTime {
		return nil, fmt.Errorf("start time %f is after end time %f", r.startTime, r.endTime)
	}

	var id string
	if err := db.QueryRowContext(ctx, selectSessionIDSQL, sessionID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("checking session: %w", err)
	}

	return r, nil
}

func (r *SqliteSampleReader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}

	if r.pos >= len(r.buffer) {
		if r.done {
			return false
		}
		if !r.fetch(ctx) {
			return false
		}
	}

	r.current = r.buffer[r.pos]
	r.pos++
	return true
}

func (r *SqliteSampleReader) fetch(ctx context.Context) (ok bool) {
	stmt, err := r.db.PrepareContext(ctx, selectSamplesSQL)
	if err != nil {
		r.err = fmt.Errorf("preparing statement: %w", err)
		return false
	}
	defer closeWithError(stmt, &r.err)

	rows, err := stmt.QueryContext(ctx, r.sessionID, r.startTime, r.endTime, r.batchSize, r.offset)
	if err != nil {
		r.err = fmt.Errorf("querying samples: %w", err)
		return false
	}
	defer closeWithError(rows, &r.err)

	r.buffer = r.buffer[:0]
	r.pos = 0

	for rows.Next() {
		var data sampleData
		if err = rows.Scan(
			&data.ElapsedTime,
			&data.ThrottlePosition,
			&data.BrakePosition,
			&data.ClutchPosition,
			&data.SteeringAngle,
			&data.SpeedKmh,
			&data.SpeedMph,
			&data.RPM,
			&data.Gear,
			&data.EnginePower,
			&data.EngineTorque,
			&data.PosX,
			&data.PosY,
			&data.PosZ,
			&data.Latitude,
			&data.Longitude,
			&data.Heading,
			&data.LapDistance,
		); err != nil {
			r.err = fmt.Errorf("scanning sample: %w", err)
			return false
		}
		r.buffer = append(r.buffer, fromSampleData(&data))
	}
	if err = rows.Err(); err != nil {
		r.err = fmt.Errorf("iterating samples: %w", err)
		return false
	}

	r.offset += len(r.buffer)
	if len(r.buffer) < r.batchSize {
		r.done = true
	}
	return len(r.buffer) > 0
}

func (r *SqliteSampleReader) Current() *telemetry.Sample {
	return &r.current
}

func (r *SqliteSampleReader) Error() error {
	return r.err
}

func (r *SqliteSampleReader) Close() error {
	r.buffer = nil
	r.done = true
	return nil
}
