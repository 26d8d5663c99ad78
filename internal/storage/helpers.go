package storage

import (
	"database/sql"

	"github.com/pitwall/telemetry-ingest/internal/telemetry"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil && cErr != sql.ErrTxDone {
		*err = cErr
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *float64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func intPtr(v sql.NullInt64) *float64 {
	if !v.Valid {
		return nil
	}
	f := float64(v.Int64)
	return &f
}

func toSampleData(sessionID string, s *telemetry.Sample) *sampleData {
	return &sampleData{
		SessionID:        sessionID,
		ElapsedTime:      s.ElapsedTime,
		ThrottlePosition: nullFloat(s.ThrottlePosition),
		BrakePosition:    nullFloat(s.BrakePosition),
		ClutchPosition:   nullFloat(s.ClutchPosition),
		SteeringAngle:    nullFloat(s.SteeringAngle),
		SpeedKmh:         nullFloat(s.SpeedKmh),
		SpeedMph:         nullFloat(s.SpeedMph),
		RPM:              nullFloat(s.RPM),
		Gear:             nullInt(s.Gear),
		EnginePower:      nullFloat(s.EnginePower),
		EngineTorque:     nullFloat(s.EngineTorque),
		PosX:             nullFloat(s.PosX),
		PosY:             nullFloat(s.PosY),
		PosZ:             nullFloat(s.PosZ),
		Latitude:         nullFloat(s.Latitude),
		Longitude:        nullFloat(s.Longitude),
		Heading:          nullFloat(s.Heading),
		LapDistance:      nullFloat(s.LapDistance),
	}
}

func fromSampleData(d *sampleData) telemetry.Sample {
	return telemetry.Sample{
		ElapsedTime:      d.ElapsedTime,
		ThrottlePosition: floatPtr(d.ThrottlePosition),
		BrakePosition:    floatPtr(d.BrakePosition),
		ClutchPosition:   floatPtr(d.ClutchPosition),
		SteeringAngle:    floatPtr(d.SteeringAngle),
		SpeedKmh:         floatPtr(d.SpeedKmh),
		SpeedMph:         floatPtr(d.SpeedMph),
		RPM:              floatPtr(d.RPM),
		Gear:             intPtr(d.Gear),
		EnginePower:      floatPtr(d.EnginePower),
		EngineTorque:     floatPtr(d.EngineTorque),
		PosX:             floatPtr(d.PosX),
		PosY:             floatPtr(d.PosY),
		PosZ:             floatPtr(d.PosZ),
		Latitude:         floatPtr(d.Latitude),
		Longitude:        floatPtr(d.Longitude),
		Heading:          floatPtr(d.Heading),
		LapDistance:      floatPtr(d.LapDistance),
	}
}
