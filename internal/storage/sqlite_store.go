package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a new database connection and initializes the schema
// using the Sqlite database
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		// The write connection must exist first so the schema is in place.
		if _, err := s.getWriteDB(); err != nil {
			s.readDBErr = err
			return
		}

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_foreign_keys=on"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) InsertSessionIfAbsent(ctx context.Context, session *telemetry.Session) (created bool, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	// Fast-path lookup. Never trusted alone: two concurrent uploads of the
	// same content can both miss here, and the UNIQUE constraint below
	// decides the winner.
	var existingID string
	err = db.QueryRowContext(ctx, selectSessionByHashSQL, session.Fingerprint).Scan(&existingID)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("looking up fingerprint: %w", err)
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, insertSessionSQL,
		session.ID,
		session.Name,
		nullString(session.Track),
		nullString(session.Car),
		nullString(session.UserID),
		session.CreatedAt,
		session.Fingerprint,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("inserting session: %w", err)
	}

	return true, nil
}

func (s *SqliteStore) Session(ctx context.Context, id string) (session *telemetry.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data sessionData
	if err = stmt.QueryRowContext(ctx, id).Scan(
		&data.ID,
		&data.SessionName,
		&data.TrackName,
		&data.CarName,
		&data.UserID,
		&data.CreatedAt,
		&data.Hash,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
			return
		}
		err = fmt.Errorf("scanning session: %w", err)
		return
	}

	return sessionFromData(&data), nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*telemetry.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data sessionData
		if err = rows.Scan(
			&data.ID,
			&data.SessionName,
			&data.TrackName,
			&data.CarName,
			&data.UserID,
			&data.CreatedAt,
			&data.Hash,
		); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, sessionFromData(&data))
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) DeleteSession(ctx context.Context, id string) error {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	result, err := db.ExecContext(ctx, deleteSessionSQL, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

func (s *SqliteStore) BatchInsertSamples(ctx context.Context, sessionID string, samples []telemetry.Sample) (inserted, duplicates int, err error) {
	if len(samples) == 0 {
		return 0, 0, nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return 0, 0, fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]interface{}, 0, len(samples)*19)

	var sb strings.Builder
	sb.WriteString(insertSamplesSQL)

	for i := range samples {
		data := toSampleData(sessionID, &samples[i])
		values = append(values,
			data.SessionID,
			data.ElapsedTime,
			data.ThrottlePosition,
			data.BrakePosition,
			data.ClutchPosition,
			data.SteeringAngle,
			data.SpeedKmh,
			data.SpeedMph,
			data.RPM,
			data.Gear,
			data.EnginePower,
			data.EngineTorque,
			data.PosX,
			data.PosY,
			data.PosZ,
			data.Latitude,
			data.Longitude,
			data.Heading,
			data.LapDistance,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(insertSamplesPlaceholder)
	}

	// INSERT OR IGNORE leaves composite-key conflicts out of the change
	// count, which is how duplicates are detected without erroring the batch.
	result, err := tx.ExecContext(ctx, sb.String(), values...)
	if err != nil {
		return 0, 0, fmt.Errorf("batch inserting samples: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("counting inserted samples: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing transaction: %w", err)
	}

	inserted = int(affected)
	duplicates = len(samples) - inserted
	return inserted, duplicates, nil
}

func (s *SqliteStore) ReadSamples(ctx context.Context, sessionID string, opts ...ReaderOption) (SampleReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteSampleReader(ctx, db, sessionID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}

func sessionFromData(data *sessionData) *telemetry.Session {
	return &telemetry.Session{
		ID:          data.ID,
		Name:        data.SessionName,
		Track:       data.TrackName.String,
		Car:         data.CarName.String,
		UserID:      data.UserID.String,
		CreatedAt:   data.CreatedAt,
		Fingerprint: data.Hash,
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
