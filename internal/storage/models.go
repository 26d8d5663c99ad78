package storage

import (
	"database/sql"
	"time"
)

type sessionData struct {
	ID          string
	SessionName string
	TrackName   sql.NullString
	CarName     sql.NullString
	UserID      sql.NullString
	CreatedAt   time.Time
	Hash        string
}

type sampleData struct {
	SessionID        string
	ElapsedTime      float64
	ThrottlePosition sql.NullFloat64
	BrakePosition    sql.NullFloat64
	ClutchPosition   sql.NullFloat64
	SteeringAngle    sql.NullFloat64
	SpeedKmh         sql.NullFloat64
	SpeedMph         sql.NullFloat64
	RPM              sql.NullFloat64
	Gear             sql.NullInt64
	EnginePower      sql.NullFloat64
	EngineTorque     sql.NullFloat64
	PosX             sql.NullFloat64
	PosY             sql.NullFloat64
	PosZ             sql.NullFloat64
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	Heading          sql.NullFloat64
	LapDistance      sql.NullFloat64
}
