package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// fakeWriter records every batch call and can be told to fail chunks, keyed
// by the first elapsed time in the chunk.
type fakeWriter struct {
	mu        sync.Mutex
	calls     []int           // size of each batch call, in order
	failTimes map[float64]int // first-sample time -> failures left (-1 = always)
}

func (w *fakeWriter) BatchInsertSamples(_ context.Context, _ string, samples []telemetry.Sample) (int, int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls = append(w.calls, len(samples))

	if len(samples) > 0 {
		key := samples[0].ElapsedTime
		if left, ok := w.failTimes[key]; ok && left != 0 {
			if left > 0 {
				w.failTimes[key] = left - 1
			}
			return 0, 0, errors.New("store unavailable")
		}
	}
	return len(samples), 0, nil
}

func makeSamples(n int) []telemetry.Sample {
	samples := make([]telemetry.Sample, n)
	for i := range samples {
		samples[i].ElapsedTime = float64(i)
	}
	return samples
}

func TestLoad_ChunksInput(t *testing.T) {
	writer := &fakeWriter{}
	loader := NewBatchLoader(writer)

	result := loader.Load(context.Background(), "s1", makeSamples(1200))

	// 1200 samples at the default chunk size of 500 is exactly 3 writes.
	want := []int{500, 500, 200}
	if len(writer.calls) != len(want) {
		t.Fatalf("expected %d batch calls, got %d", len(want), len(writer.calls))
	}
	for i, size := range want {
		if writer.calls[i] != size {
			t.Errorf("call %d: expected size %d, got %d", i, size, writer.calls[i])
		}
	}
	if result.Written != 1200 {
		t.Errorf("expected 1200 written, got %d", result.Written)
	}
	if len(result.FailedChunks) != 0 {
		t.Errorf("expected no failed chunks, got %d", len(result.FailedChunks))
	}
}

func TestLoad_Empty(t *testing.T) {
	writer := &fakeWriter{}
	loader := NewBatchLoader(writer)

	result := loader.Load(context.Background(), "s1", nil)

	if len(writer.calls) != 0 {
		t.Errorf("expected no batch calls for empty input, got %d", len(writer.calls))
	}
	if result.Written != 0 || len(result.FailedChunks) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestLoad_RetriesTransientFailure(t *testing.T) {
	// The chunk starting at t=0 fails twice, then succeeds.
	writer := &fakeWriter{failTimes: map[float64]int{0: 2}}
	loader := NewBatchLoader(writer,
		WithChunkSize(10),
		WithMaxRetries(3),
		WithRetryInterval(time.Millisecond))

	result := loader.Load(context.Background(), "s1", makeSamples(10))

	if len(writer.calls) != 3 {
		t.Errorf("expected 3 attempts (2 failures + 1 success), got %d", len(writer.calls))
	}
	if result.Written != 10 {
		t.Errorf("expected 10 written after retries, got %d", result.Written)
	}
	if len(result.FailedChunks) != 0 {
		t.Errorf("expected recovered chunk not recorded as failed, got %d", len(result.FailedChunks))
	}
}

func TestLoad_FailedChunkDoesNotAbortSession(t *testing.T) {
	// The middle chunk (first sample t=10) never succeeds.
	writer := &fakeWriter{failTimes: map[float64]int{10: -1}}
	loader := NewBatchLoader(writer,
		WithChunkSize(10),
		WithMaxRetries(2),
		WithRetryInterval(time.Millisecond))

	result := loader.Load(context.Background(), "s1", makeSamples(30))

	if result.Written != 20 {
		t.Errorf("expected the two healthy chunks written (20), got %d", result.Written)
	}
	if len(result.FailedChunks) != 1 {
		t.Fatalf("expected 1 failed chunk, got %d", len(result.FailedChunks))
	}

	failed := result.FailedChunks[0]
	if failed.Index != 1 {
		t.Errorf("expected failed chunk index 1, got %d", failed.Index)
	}
	if failed.Size != 10 {
		t.Errorf("expected failed chunk size 10, got %d", failed.Size)
	}
	if failed.Err == nil {
		t.Error("expected failed chunk to carry the store error")
	}

	// Initial attempt plus two retries for the bad chunk, one call each for
	// the healthy ones.
	if len(writer.calls) != 5 {
		t.Errorf("expected 5 batch calls, got %d", len(writer.calls))
	}
}

func TestLoad_CountsDuplicates(t *testing.T) {
	writer := &duplicatingWriter{duplicatesPerCall: 2}
	loader := NewBatchLoader(writer, WithChunkSize(10))

	result := loader.Load(context.Background(), "s1", makeSamples(20))

	if result.Written != 16 {
		t.Errorf("expected 16 written, got %d", result.Written)
	}
	if result.Duplicates != 4 {
		t.Errorf("expected 4 duplicates, got %d", result.Duplicates)
	}
}

type duplicatingWriter struct {
	duplicatesPerCall int
}

func (w *duplicatingWriter) BatchInsertSamples(_ context.Context, _ string, samples []telemetry.Sample) (int, int, error) {
	d := w.duplicatesPerCall
	if d > len(samples) {
		d = len(samples)
	}
	return len(samples) - d, d, nil
}
