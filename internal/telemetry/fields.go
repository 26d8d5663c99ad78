package telemetry

// Canonical field names. Every source-specific column is renamed into this
// vocabulary before validation and storage.
const (
	FieldElapsedTime      = "elapsed_time"
	FieldThrottlePosition = "throttle_position"
	FieldBrakePosition    = "brake_position"
	FieldClutchPosition   = "clutch_position"
	FieldSteeringAngle    = "steering_angle"
	FieldSpeedKmh         = "speed_kmh"
	FieldSpeedMph         = "speed_mph"
	FieldRPM              = "rpm"
	FieldGear             = "gear"
	FieldEnginePower      = "engine_power"
	FieldEngineTorque     = "engine_torque"
	FieldPosX             = "pos_x"
	FieldPosY             = "pos_y"
	FieldPosZ             = "pos_z"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldHeading          = "heading"
	FieldLapDistance      = "lap_distance"
)

// FieldSpec declares how a canonical field is validated and stored.
// Exactly one of Clamp and Range may be set: Clamp pins out-of-bound values
// to the nearest bound, Range rejects them.
type FieldSpec struct {
	Name      string
	Clamp     *Bounds // Clamp to these bounds instead of rejecting
	Range     *Bounds // Reject values outside these bounds
	Precision int     // Decimal places kept when storing
}

// Bounds is an inclusive numeric interval.
type Bounds struct {
	Min, Max float64
}

func clamp(min, max float64) *Bounds { return &Bounds{Min: min, Max: max} }

var fieldSpecs = map[string]FieldSpec{
	FieldElapsedTime:      {Name: FieldElapsedTime, Range: &Bounds{0, 86400}, Precision: 3},
	FieldThrottlePosition: {Name: FieldThrottlePosition, Clamp: clamp(0, 1), Precision: 2},
	FieldBrakePosition:    {Name: FieldBrakePosition, Clamp: clamp(0, 1), Precision: 2},
	FieldClutchPosition:   {Name: FieldClutchPosition, Clamp: clamp(0, 1), Precision: 2},
	FieldSteeringAngle:    {Name: FieldSteeringAngle, Range: &Bounds{-1080, 1080}, Precision: 3},
	FieldSpeedKmh:         {Name: FieldSpeedKmh, Range: &Bounds{0, 600}, Precision: 2},
	FieldSpeedMph:         {Name: FieldSpeedMph, Range: &Bounds{0, 400}, Precision: 2},
	FieldRPM:              {Name: FieldRPM, Range: &Bounds{0, 25000}, Precision: 0},
	FieldGear:             {Name: FieldGear, Range: &Bounds{-1, 10}, Precision: 0},
	FieldEnginePower:      {Name: FieldEnginePower, Range: &Bounds{0, 5000}, Precision: 1},
	FieldEngineTorque:     {Name: FieldEngineTorque, Range: &Bounds{0, 5000}, Precision: 1},
	FieldPosX:             {Name: FieldPosX, Precision: 3},
	FieldPosY:             {Name: FieldPosY, Precision: 3},
	FieldPosZ:             {Name: FieldPosZ, Precision: 3},
	FieldLatitude:         {Name: FieldLatitude, Range: &Bounds{-90, 90}, Precision: 6},
	FieldLongitude:        {Name: FieldLongitude, Range: &Bounds{-180, 180}, Precision: 6},
	FieldHeading:          {Name: FieldHeading, Range: &Bounds{-360, 360}, Precision: 3},
	FieldLapDistance:      {Name: FieldLapDistance, Range: &Bounds{0, 1e6}, Precision: 3},
}

// Spec returns the validation spec for a canonical field, if one is declared.
func Spec(field string) (FieldSpec, bool) {
	spec, ok := fieldSpecs[field]
	return spec, ok
}

// TimeAliases are the column names recognized as the elapsed-time field.
// Header detection keys off these: the first raw line containing one of them
// is the true column-header row, whatever metadata banner precedes it.
var TimeAliases = []string{
	"time",
	"elapsed_time",
	"timestamp",
	"elapsed",
	"sessiontime",
	"session_time",
	"time_s",
}

// fieldAliases maps lower-snake-cased source column names to canonical
// field names. Sources observed so far: MoTeC exports, iRacing CSV dumps
// and ACC broadcast logs.
var fieldAliases = map[string]string{
	"time":         FieldElapsedTime,
	"elapsed_time": FieldElapsedTime,
	"timestamp":    FieldElapsedTime,
	"elapsed":      FieldElapsedTime,
	"sessiontime":  FieldElapsedTime,
	"session_time": FieldElapsedTime,
	"time_s":       FieldElapsedTime,

	"throttle":          FieldThrottlePosition,
	"throttle_pos":      FieldThrottlePosition,
	"throttle_position": FieldThrottlePosition,
	"throttle_pct":      FieldThrottlePosition,
	"rthrottle":         FieldThrottlePosition,

	"brake":          FieldBrakePosition,
	"brake_pos":      FieldBrakePosition,
	"brake_position": FieldBrakePosition,
	"brake_pct":      FieldBrakePosition,
	"rbrake":         FieldBrakePosition,

	"clutch":          FieldClutchPosition,
	"clutch_pos":      FieldClutchPosition,
	"clutch_position": FieldClutchPosition,
	"rclutch":         FieldClutchPosition,

	"steer":           FieldSteeringAngle,
	"steering":        FieldSteeringAngle,
	"steer_angle":     FieldSteeringAngle,
	"steerangle":      FieldSteeringAngle,
	"steering_angle":  FieldSteeringAngle,
	"steering_wheel":  FieldSteeringAngle,
	"swa":             FieldSteeringAngle,

	"speed":        FieldSpeedKmh,
	"velocity":     FieldSpeedKmh,
	"ground_speed": FieldSpeedKmh,
	"speed_kmh":    FieldSpeedKmh,
	"speed_kph":    FieldSpeedKmh,
	"speed_mph":    FieldSpeedMph,

	"rpm":        FieldRPM,
	"rpms":       FieldRPM,
	"engine_rpm": FieldRPM,

	"gear":  FieldGear,
	"ngear": FieldGear,

	"power":         FieldEnginePower,
	"engine_power":  FieldEnginePower,
	"torque":        FieldEngineTorque,
	"engine_torque": FieldEngineTorque,

	"x":                FieldPosX,
	"pos_x":            FieldPosX,
	"position_x":       FieldPosX,
	"world_position_x": FieldPosX,
	"y":                FieldPosY,
	"pos_y":            FieldPosY,
	"position_y":       FieldPosY,
	"world_position_y": FieldPosY,
	"z":                FieldPosZ,
	"pos_z":            FieldPosZ,
	"position_z":       FieldPosZ,
	"world_position_z": FieldPosZ,

	"lat":      FieldLatitude,
	"latitude": FieldLatitude,
	"gps_lat":  FieldLatitude,

	"lon":       FieldLongitude,
	"long":      FieldLongitude,
	"longitude": FieldLongitude,
	"gps_lon":   FieldLongitude,
	"gps_long":  FieldLongitude,

	"heading": FieldHeading,
	"yaw":     FieldHeading,
	"compass": FieldHeading,

	"lap_dist":     FieldLapDistance,
	"lapdist":      FieldLapDistance,
	"lap_distance": FieldLapDistance,
	"lapdistpct":   FieldLapDistance,
	"distance":     FieldLapDistance,
}

// Canonical resolves a lower-snake-cased source column name to its canonical
// field name. The second return reports whether the name was recognized.
func Canonical(name string) (string, bool) {
	canonical, ok := fieldAliases[name]
	return canonical, ok
}
