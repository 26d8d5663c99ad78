package ingest

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// DefaultConcurrency bounds how many sessions run their pipeline at once
// when no explicit limit is configured. The right value depends on what the
// downstream store accepts; this is a conservative floor, not a tuned one.
const DefaultConcurrency = 5

// WithConcurrency sets the admission gate size: the maximum number of
// sessions actively running their pipeline at any moment.
func WithConcurrency(c int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		if c > 0 {
			o.concurrency = c
		}
	}
}

// WithLogger sets the logger for the orchestrator.
func WithLogger(logger *slog.Logger) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator fans the ingestion pipeline out across many sessions. A fixed
// pool of workers pulls session jobs from a queue, which makes the
// concurrency ceiling an explicit parameter instead of an incidental runtime
// behavior: the downstream store has a throughput ceiling, and unbounded
// fan-out is exactly the failure mode this component exists to prevent.
type Orchestrator struct {
	pipeline *Pipeline

	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator creates a new Orchestrator running the given pipeline.
func NewOrchestrator(pipeline *Pipeline, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		pipeline:    pipeline,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// Run processes all jobs and returns one Result per job, index-aligned with
// the input. At most the configured number of sessions run concurrently;
// the rest queue until a slot frees. When ctx is cancelled no new sessions
// are admitted, but sessions already past the gate finish their pipeline,
// chunk writes included. Unadmitted jobs come back in StateReceived with
// Err set to the context error.
func (o *Orchestrator) Run(ctx context.Context, jobs []Job) []*Result {
	results := make([]*Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := o.concurrency
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range queue {
				// Admitted sessions run to completion even on cancellation,
				// so no chunk write is aborted mid-flight.
				results[i] = o.pipeline.Run(context.WithoutCancel(ctx), jobs[i])
			}
		}()
	}

	admitted := 0
feed:
	for i := range jobs {
		select {
		case queue <- i:
			admitted++
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	if admitted < len(jobs) {
		o.logger.Warn("stopped admitting sessions",
			slog.Int("admitted", admitted),
			slog.Int("total", len(jobs)),
			slog.Any("error", ctx.Err()))

		for i, result := range results {
			if result == nil {
				results[i] = &Result{
					SessionName: jobs[i].Name,
					State:       StateReceived,
					Err:         ctx.Err(),
				}
			}
		}
	}

	return results
}
