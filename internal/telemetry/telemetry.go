package telemetry

import (
	"time"
)

// Session represents a single recording ingested from one uploaded log file.
// A session is created once per successfully parsed file and is never mutated
// afterwards except for soft metadata. Its samples are deleted with it.
type Session struct {
	ID          string    `json:"id"`          // Unique identifier (UUID)
	Name        string    `json:"name"`        // Display name, usually derived from the file name
	Track       string    `json:"track"`       // Track name, if known
	Car         string    `json:"car"`         // Car name, if known
	UserID      string    `json:"userID"`      // Owning user identifier
	Fingerprint string    `json:"fingerprint"` // SHA-256 hex digest over the normalized session content
	CreatedAt   time.Time `json:"createdAt"`   // When the session row was created
}

// Sample is one time-indexed observation row belonging to exactly one session.
// All fields except ElapsedTime are optional: a field rejected by validation
// is nulled rather than dropping the whole row.
type Sample struct {
	ElapsedTime      float64  `json:"elapsedTime"`                // Elapsed time in seconds since session start
	ThrottlePosition *float64 `json:"throttlePosition,omitempty"` // Throttle position [0, 1]
	BrakePosition    *float64 `json:"brakePosition,omitempty"`    // Brake position [0, 1]
	ClutchPosition   *float64 `json:"clutchPosition,omitempty"`   // Clutch position [0, 1]
	SteeringAngle    *float64 `json:"steeringAngle,omitempty"`    // Steering angle in degrees
	SpeedKmh         *float64 `json:"speedKmh,omitempty"`         // Speed in km/h (canonical speed unit)
	SpeedMph         *float64 `json:"speedMph,omitempty"`         // Speed in mph
	RPM              *float64 `json:"rpm,omitempty"`              // Engine revolutions per minute
	Gear             *float64 `json:"gear,omitempty"`             // Selected gear (-1 reverse, 0 neutral)
	EnginePower      *float64 `json:"enginePower,omitempty"`      // Engine power in kW
	EngineTorque     *float64 `json:"engineTorque,omitempty"`     // Engine torque in Nm
	PosX             *float64 `json:"posX,omitempty"`             // World position X in meters
	PosY             *float64 `json:"posY,omitempty"`             // World position Y in meters
	PosZ             *float64 `json:"posZ,omitempty"`             // World position Z in meters
	Latitude         *float64 `json:"latitude,omitempty"`         // GPS latitude in degrees
	Longitude        *float64 `json:"longitude,omitempty"`        // GPS longitude in degrees
	Heading          *float64 `json:"heading,omitempty"`          // Heading in degrees
	LapDistance      *float64 `json:"lapDistance,omitempty"`      // Distance travelled within the current lap in meters
}

// Set assigns a canonical field on the sample by name. Unknown names are
// ignored: unmapped columns still contribute to the session fingerprint but
// have no persisted column.
func (s *Sample) Set(field string, value *float64) {
	switch field {
	case FieldElapsedTime:
		if value != nil {
			s.ElapsedTime = *value
		}
	case FieldThrottlePosition:
		s.ThrottlePosition = value
	case FieldBrakePosition:
		s.BrakePosition = value
	case FieldClutchPosition:
		s.ClutchPosition = value
	case FieldSteeringAngle:
		s.SteeringAngle = value
	case FieldSpeedKmh:
		s.SpeedKmh = value
	case FieldSpeedMph:
		s.SpeedMph = value
	case FieldRPM:
		s.RPM = value
	case FieldGear:
		s.Gear = value
	case FieldEnginePower:
		s.EnginePower = value
	case FieldEngineTorque:
		s.EngineTorque = value
	case FieldPosX:
		s.PosX = value
	case FieldPosY:
		s.PosY = value
	case FieldPosZ:
		s.PosZ = value
	case FieldLatitude:
		s.Latitude = value
	case FieldLongitude:
		s.Longitude = value
	case FieldHeading:
		s.Heading = value
	case FieldLapDistance:
		s.LapDistance = value
	}
}
