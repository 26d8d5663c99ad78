package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pitwall/telemetry-ingest/internal/ingest"
	"github.com/pitwall/telemetry-ingest/internal/storage"
)

// Run ingests the given log files into the configured database and logs a
// per-run summary. Every file yields one result; partial success is normal
// and reported, not fatal.
func Run(ctx context.Context, config *Config, paths []string, logger *slog.Logger) error {
	files, err := expandPaths(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files to ingest")
	}

	store := storage.NewSqliteStore(config.Storage.DatabasePath)
	defer store.Close()

	loader := ingest.NewBatchLoader(store,
		ingest.WithChunkSize(config.Ingest.ChunkSize),
		ingest.WithMaxRetries(config.Ingest.MaxRetries),
		ingest.WithRetryInterval(config.Ingest.RetryInterval),
		ingest.WithLoaderLogger(logger),
	)
	pipeline := ingest.NewPipeline(store,
		ingest.WithLoader(loader),
		ingest.WithPipelineLogger(logger),
	)
	orchestrator := ingest.NewOrchestrator(pipeline,
		ingest.WithConcurrency(config.Ingest.Concurrency),
		ingest.WithLogger(logger),
	)

	jobs, closers, err := makeJobs(files, config)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	logger.Info("starting ingestion",
		slog.Int("files", len(jobs)),
		slog.Int("concurrency", orchestratorConcurrency(config)),
		slog.String("database", config.Storage.DatabasePath))

	results := orchestrator.Run(ctx, jobs)
	logSummary(results, logger)
	return nil
}

func orchestratorConcurrency(config *Config) int {
	if config.Ingest.Concurrency > 0 {
		return config.Ingest.Concurrency
	}
	return ingest.DefaultConcurrency
}

func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading input path '%s': %w", path, err)
		}

		if !stat.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading input directory '%s': %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch filepath.Ext(entry.Name()) {
			case ".csv", ".txt", ".log":
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

func makeJobs(files []string, config *Config) ([]ingest.Job, []*os.File, error) {
	jobs := make([]ingest.Job, 0, len(files))
	closers := make([]*os.File, 0, len(files))

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return nil, nil, fmt.Errorf("opening input file '%s': %w", file, err)
		}

		closers = append(closers, f)
		jobs = append(jobs, ingest.Job{
			Name:       filepath.Base(file),
			Track:      config.Ingest.Track,
			Car:        config.Ingest.Car,
			UserID:     config.Ingest.UserID,
			SourceHint: filepath.Ext(file),
			Content:    f,
		})
	}
	return jobs, closers, nil
}

func logSummary(results []*ingest.Result, logger *slog.Logger) {
	var completed, partial, rejected, duplicates int
	var rowsRead, rowsWritten, duplicateSamples, failedChunks int64

	for _, r := range results {
		switch r.State {
		case ingest.StateCompleted:
			completed++
		case ingest.StatePartiallyLoaded:
			partial++
		case ingest.StateRejected:
			if r.DuplicateSession {
				duplicates++
			} else {
				rejected++
			}
		default:
			rejected++
		}

		rowsRead += int64(r.RowsRead)
		rowsWritten += int64(r.RowsWritten)
		duplicateSamples += int64(r.DuplicateSamples)
		failedChunks += int64(len(r.FailedChunks))
	}

	logger.Info("ingestion finished",
		slog.Group("sessions",
			slog.Int("completed", completed),
			slog.Int("partiallyLoaded", partial),
			slog.Int("duplicate", duplicates),
			slog.Int("rejected", rejected),
		),
		slog.Group("rows",
			slog.String("read", humanize.Comma(rowsRead)),
			slog.String("written", humanize.Comma(rowsWritten)),
			slog.String("duplicates", humanize.Comma(duplicateSamples)),
			slog.Int64("failedChunks", failedChunks),
		))
}
