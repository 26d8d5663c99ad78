package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pitwall/telemetry-ingest/internal/dedup"
	"github.com/pitwall/telemetry-ingest/internal/parse"
	"github.com/pitwall/telemetry-ingest/internal/telemetry"
	"github.com/pitwall/telemetry-ingest/internal/validate"
)

// maxLineSize bounds a single log line. MoTeC exports with hundreds of
// channels stay well under this.
const maxLineSize = 1 << 20

// SessionStore is the slice of the store the pipeline needs on top of the
// loader's SampleWriter.
type SessionStore interface {
	SampleWriter
	InsertSessionIfAbsent(ctx context.Context, session *telemetry.Session) (created bool, err error)
}

// Job describes one uploaded log file to ingest.
type Job struct {
	Name       string    // Session display name, usually the file name
	Track      string    // Track name, if known
	Car        string    // Car name, if known
	UserID     string    // Owning user
	SourceHint string    // File name/extension hint, informational only
	Content    io.Reader // Raw log stream
}

// WithPipelineLogger sets the logger for the pipeline.
func WithPipelineLogger(logger *slog.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStateFunc registers an observer called on every per-session state
// transition.
func WithStateFunc(fn func(sessionName string, state State)) func(*Pipeline) {
	return func(p *Pipeline) {
		p.stateFunc = fn
	}
}

// Pipeline runs the full ingestion sequence for a single session: parse,
// normalize, validate, duplicate-check, load. Stages execute strictly in
// this order; failures are recovered at the narrowest scope that preserves
// correctness, and only an unparseable header or a whole-session duplicate
// is session-fatal.
type Pipeline struct {
	store  SessionStore
	loader *BatchLoader

	logger    *slog.Logger
	stateFunc func(sessionName string, state State)
}

// WithLoader replaces the default BatchLoader, e.g. to tune chunk size or
// retry policy.
func WithLoader(loader *BatchLoader) func(*Pipeline) {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

// NewPipeline creates a Pipeline writing through the given store.
func NewPipeline(store SessionStore, options ...func(*Pipeline)) *Pipeline {
	p := Pipeline{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&p)
	}

	if p.loader == nil {
		p.loader = NewBatchLoader(store, WithLoaderLogger(p.logger))
	}
	return &p
}

func (p *Pipeline) transition(result *Result, state State) {
	result.State = state
	if p.stateFunc != nil {
		p.stateFunc(result.SessionName, state)
	}
}

// Run ingests one session and always returns a Result; fatal failures leave
// the session in StateRejected with Err set.
func (p *Pipeline) Run(ctx context.Context, job Job) *Result {
	result := &Result{SessionName: job.Name}
	p.transition(result, StateReceived)

	logger := p.logger.With(slog.String("session", job.Name))

	// Parsing
	p.transition(result, StateParsing)
	lines, err := readLines(job.Content)
	if err != nil {
		result.Err = fmt.Errorf("reading input: %w", err)
		p.transition(result, StateRejected)
		return result
	}

	frame, err := parse.Parse(lines)
	if err != nil {
		if errors.Is(err, parse.ErrHeaderNotFound) {
			logger.Warn("no header row found, rejecting file", slog.String("sourceHint", job.SourceHint))
		}
		result.Err = err
		p.transition(result, StateRejected)
		return result
	}
	result.RowsRead = len(frame.Rows)

	// Normalizing
	p.transition(result, StateNormalizing)
	report := parse.Normalize(frame)
	result.Warnings = report.Warnings()
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	if frame.TimeIndex() < 0 {
		result.Err = fmt.Errorf("no elapsed-time column after normalization: %w", parse.ErrHeaderNotFound)
		p.transition(result, StateRejected)
		return result
	}

	// Validating
	p.transition(result, StateValidating)
	vReport := validate.Frame(frame)
	result.RowsDropped = vReport.RowsDropped
	result.RejectedFields = vReport.Rejected
	result.RowsValidated = len(frame.Rows)

	// DuplicateChecking
	p.transition(result, StateDuplicateChecking)
	session := &telemetry.Session{
		ID:          uuid.NewString(),
		Name:        job.Name,
		Track:       job.Track,
		Car:         job.Car,
		UserID:      job.UserID,
		Fingerprint: dedup.Fingerprint(frame),
	}

	created, err := p.store.InsertSessionIfAbsent(ctx, session)
	if err != nil {
		result.Err = fmt.Errorf("checking session fingerprint: %w", err)
		p.transition(result, StateRejected)
		return result
	}
	if !created {
		logger.Info("duplicate session, nothing written", slog.String("fingerprint", session.Fingerprint))
		result.DuplicateSession = true
		p.transition(result, StateRejected)
		return result
	}
	result.SessionID = session.ID

	// Loading
	p.transition(result, StateLoading)
	samples := frame.Samples()
	deriveSpeeds(samples)

	load := p.loader.Load(ctx, session.ID, samples)
	result.RowsWritten = load.Written
	result.DuplicateSamples = load.Duplicates
	result.FailedChunks = load.FailedChunks

	if len(load.FailedChunks) > 0 {
		p.transition(result, StatePartiallyLoaded)
	} else {
		p.transition(result, StateCompleted)
	}

	logger.Info("session ingested",
		slog.String("sessionID", session.ID),
		slog.String("state", string(result.State)),
		slog.Int("rowsRead", result.RowsRead),
		slog.Int("rowsWritten", result.RowsWritten),
		slog.Int("duplicateSamples", result.DuplicateSamples),
		slog.Int("failedChunks", len(result.FailedChunks)))

	return result
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// deriveSpeeds fills in the missing speed unit so every sample carries both,
// as the persisted schema does.
func deriveSpeeds(samples []telemetry.Sample) {
	for i := range samples {
		s := &samples[i]
		switch {
		case s.SpeedKmh != nil && s.SpeedMph == nil:
			mph := validate.Round(*s.SpeedKmh/parse.MphToKmh, 2)
			s.SpeedMph = &mph
		case s.SpeedMph != nil && s.SpeedKmh == nil:
			kmh := validate.Round(*s.SpeedMph*parse.MphToKmh, 2)
			s.SpeedKmh = &kmh
		}
	}
}
