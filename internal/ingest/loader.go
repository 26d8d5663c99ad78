package ingest

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// Documented defaults for the chunked-load engine. Larger chunks reduce
// per-call overhead but increase memory and single-failure blast radius.
const (
	DefaultChunkSize     = 500
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 250 * time.Millisecond
)

// SampleWriter is the slice of the store the loader needs.
type SampleWriter interface {
	BatchInsertSamples(ctx context.Context, sessionID string, samples []telemetry.Sample) (inserted, duplicates int, err error)
}

// WithChunkSize sets the maximum number of samples per bulk write.
func WithChunkSize(size int) func(*BatchLoader) {
	return func(l *BatchLoader) {
		if size > 0 {
			l.chunkSize = size
		}
	}
}

// WithMaxRetries sets how many times a failed chunk write is retried before
// the chunk is recorded as failed.
func WithMaxRetries(n uint64) func(*BatchLoader) {
	return func(l *BatchLoader) {
		l.maxRetries = n
	}
}

// WithRetryInterval sets the initial backoff interval between retries.
func WithRetryInterval(d time.Duration) func(*BatchLoader) {
	return func(l *BatchLoader) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

// WithLoaderLogger sets the logger for the loader.
func WithLoaderLogger(logger *slog.Logger) func(*BatchLoader) {
	return func(l *BatchLoader) {
		l.logger = logger
	}
}

// BatchLoader writes validated, deduplicated samples to the store in fixed
// size chunks. A chunk that keeps failing after bounded retries is recorded
// and skipped; one bad chunk never aborts the session's remaining chunks,
// and already-committed chunks are never lost.
type BatchLoader struct {
	store SampleWriter

	chunkSize     int
	maxRetries    uint64
	retryInterval time.Duration
	logger        *slog.Logger
}

// NewBatchLoader creates a BatchLoader writing through the given store.
func NewBatchLoader(store SampleWriter, options ...func(*BatchLoader)) *BatchLoader {
	l := BatchLoader{
		store:         store,
		chunkSize:     DefaultChunkSize,
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&l)
	}

	return &l
}

// LoadResult reports the per-chunk outcome of one session's load.
type LoadResult struct {
	Written      int
	Duplicates   int
	FailedChunks []ChunkError
}

// Load partitions samples into consecutive chunks and bulk-writes each one,
// retrying transient failures with exponential backoff. Chunks are issued in
// order; parsing and validation failures never reach this point, so every
// error seen here is a store error.
func (l *BatchLoader) Load(ctx context.Context, sessionID string, samples []telemetry.Sample) *LoadResult {
	result := &LoadResult{}

	chunkIdx := -1
	for chunk := range slices.Chunk(samples, l.chunkSize) {
		chunkIdx++

		inserted, duplicates, err := l.writeChunk(ctx, sessionID, chunk)
		if err != nil {
			l.logger.Error("chunk write failed after retries",
				slog.String("sessionID", sessionID),
				slog.Int("chunk", chunkIdx),
				slog.Int("size", len(chunk)),
				slog.Any("error", err))

			result.FailedChunks = append(result.FailedChunks, ChunkError{
				Index: chunkIdx,
				Size:  len(chunk),
				Err:   err,
			})
			continue
		}

		result.Written += inserted
		result.Duplicates += duplicates
	}

	return result
}

func (l *BatchLoader) writeChunk(ctx context.Context, sessionID string, chunk []telemetry.Sample) (inserted, duplicates int, err error) {
	operation := func() error {
		inserted, duplicates, err = l.store.BatchInsertSamples(ctx, sessionID, chunk)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(backoff.WithInitialInterval(l.retryInterval)),
		l.maxRetries,
	), ctx)

	if err = backoff.Retry(operation, policy); err != nil {
		return 0, 0, err
	}
	return inserted, duplicates, nil
}
