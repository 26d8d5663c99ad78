package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	selectSessionByHashSQL = `
SELECT
    id
FROM sessions
WHERE
    hash = ?`

	insertSessionSQL = `
INSERT INTO sessions (id,
                      session_name,
                      track_name,
                      car_name,
                      user_id,
                      created_at,
                      hash)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    session_name,
    track_name,
    car_name,
    user_id,
    created_at,
    hash
FROM sessions
WHERE
    id = ?`

	selectSessionIDSQL = `
SELECT
    id
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    session_name,
    track_name,
    car_name,
    user_id,
    created_at,
    hash
FROM sessions
ORDER BY created_at`

	deleteSessionSQL = `
DELETE
FROM sessions
WHERE
    id = ?`

	insertSamplesSQL = `
INSERT OR IGNORE INTO telemetry_samples (session_id,
                                         elapsed_time,
                                         throttle_position,
                                         brake_position,
                                         clutch_position,
                                         steering_angle,
                                         speed_kmh,
                                         speed_mph,
                                         rpm,
                                         gear,
                                         engine_power,
                                         engine_torque,
                                         pos_x,
                                         pos_y,
                                         pos_z,
                                         latitude,
                                         longitude,
                                         heading,
                                         lap_distance)
VALUES `

	selectSamplesSQL = `
SELECT
    elapsed_time,
    throttle_position,
    brake_position,
    clutch_position,
    steering_angle,
    speed_kmh,
    speed_mph,
    rpm,
    gear,
    engine_power,
    engine_torque,
    pos_x,
    pos_y,
    pos_z,
    latitude,
    longitude,
    heading,
    lap_distance
FROM telemetry_samples
WHERE
    session_id = ?
    AND elapsed_time >= ?
    AND elapsed_time <= ?
ORDER BY elapsed_time
LIMIT ? OFFSET ?`

)

const insertSamplesPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
