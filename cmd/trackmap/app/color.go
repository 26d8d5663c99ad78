package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236.0 // Slow end, deep blue
	hueEnd   = 0.0   // Fast end, red
)

var noDataColor = color.Gray{Y: 0x60}

// speedColor maps a speed to a blue-to-red gradient over the session's
// observed speed range. Samples without a speed reading render gray.
func speedColor(speed *float64, minSpeed, maxSpeed float64) color.Color {
	if speed == nil {
		return noDataColor
	}

	span := maxSpeed - minSpeed
	if span <= 0 {
		return colorful.Hsv(hueStart, 1, 0.90)
	}

	normalized := (*speed - minSpeed) / span
	hue := hueStart - normalized*(hueStart-hueEnd)
	hue = math.Min(math.Max(hue, hueEnd), hueStart)

	return colorful.Hsv(hue, 1, 0.90)
}
