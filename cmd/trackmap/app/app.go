package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/pitwall/telemetry-ingest/internal/storage"
	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// Run reads one session's committed samples and renders the driven line,
// colored by speed, to an image file.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return err
	}

	iter, err := store.ReadSamples(ctx, config.SessionID)
	if err != nil {
		return err
	}
	defer iter.Close()

	data := NewTrackData()
	for iter.Next(ctx) {
		if p, ok := trackPoint(iter.Current()); ok {
			data.Add(p)
		}
	}
	if err = iter.Error(); err != nil {
		return err
	}

	logger.Info("finished reading samples",
		slog.Group("stats",
			slog.Int("points", len(data.Points)),
			slog.String("minSpeed", fmt.Sprintf("%0.1f km/h", data.MinSpeed)),
			slog.String("maxSpeed", fmt.Sprintf("%0.1f km/h", data.MaxSpeed)),
		))

	title := session.Name
	if session.Track != "" {
		title = fmt.Sprintf("%s @ %s", session.Name, session.Track)
	}

	renderer, err := NewTrackRenderer(RenderConfig{
		Width:       config.Width,
		FontPath:    config.FontPath,
		Annotations: !config.NoAnnotations,
		Title:       title,
	})
	if err != nil {
		return fmt.Errorf("creating track renderer: %w", err)
	}

	logger.Info("rendering track map",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering track map: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

// trackPoint projects a sample onto the 2D plot. World X/Z is preferred;
// sessions carrying only geodetic coordinates fall back to longitude and
// latitude.
func trackPoint(s *telemetry.Sample) (TrackPoint, bool) {
	switch {
	case s.PosX != nil && s.PosZ != nil:
		return TrackPoint{X: *s.PosX, Y: *s.PosZ, Speed: s.SpeedKmh}, true
	case s.Longitude != nil && s.Latitude != nil:
		return TrackPoint{X: *s.Longitude, Y: *s.Latitude, Speed: s.SpeedKmh}, true
	}
	return TrackPoint{}, false
}
