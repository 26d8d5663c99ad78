package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	dpi      = 120.0
	fontSize = 12.0

	defaultBorder    = 40
	legendBarHeight  = 10
	legendBarPadding = 6
)

// TrackPoint is one plotted position with the speed at that point.
type TrackPoint struct {
	X     float64
	Y     float64
	Speed *float64
}

// TrackData accumulates the positions and speed bounds of one session.
type TrackData struct {
	Points   []TrackPoint
	MinX     float64
	MaxX     float64
	MinY     float64
	MaxY     float64
	MinSpeed float64
	MaxSpeed float64
}

// NewTrackData creates an empty TrackData.
func NewTrackData() *TrackData {
	return &TrackData{
		MinX: math.MaxFloat64, MaxX: -math.MaxFloat64,
		MinY: math.MaxFloat64, MaxY: -math.MaxFloat64,
		MinSpeed: math.MaxFloat64, MaxSpeed: -math.MaxFloat64,
	}
}

// Add appends a point and widens the tracked bounds.
func (d *TrackData) Add(p TrackPoint) {
	d.Points = append(d.Points, p)
	d.MinX = math.Min(d.MinX, p.X)
	d.MaxX = math.Max(d.MaxX, p.X)
	d.MinY = math.Min(d.MinY, p.Y)
	d.MaxY = math.Max(d.MaxY, p.Y)
	if p.Speed != nil {
		d.MinSpeed = math.Min(d.MinSpeed, *p.Speed)
		d.MaxSpeed = math.Max(d.MaxSpeed, *p.Speed)
	}
}

// RenderConfig holds configuration options for track visualization.
type RenderConfig struct {
	Width       int    // Output image width in pixels; height follows the aspect ratio
	Border      int    // White space around the track line in pixels
	FontPath    string // Optional TTF font for annotations
	Annotations bool   // Whether to draw the title and speed legend
	Title       string // Title line, e.g. "session @ track"
}

// TrackRenderer draws a session's driven line colored by speed.
type TrackRenderer struct {
	config RenderConfig
	font   *truetype.Font
}

// NewTrackRenderer creates a renderer, loading the annotation font when one
// is configured.
func NewTrackRenderer(config RenderConfig) (*TrackRenderer, error) {
	if config.Width == 0 {
		config.Width = 1024
	}
	if config.Border == 0 {
		config.Border = defaultBorder
	}

	r := TrackRenderer{config: config}

	if config.Annotations && config.FontPath != "" {
		data, err := os.ReadFile(config.FontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		if r.font, err = freetype.ParseFont(data); err != nil {
			return nil, fmt.Errorf("parsing font file: %w", err)
		}
	}

	return &r, nil
}

// Render creates an image of the driven line with optional annotations.
func (r *TrackRenderer) Render(data *TrackData) (*image.RGBA, error) {
	if len(data.Points) < 2 {
		return nil, fmt.Errorf("not enough points to render: %d", len(data.Points))
	}

	spanX := data.MaxX - data.MinX
	spanY := data.MaxY - data.MinY
	if spanX <= 0 || spanY <= 0 {
		return nil, fmt.Errorf("degenerate track bounds: %gx%g", spanX, spanY)
	}

	border := r.config.Border
	plotWidth := r.config.Width - 2*border
	plotHeight := int(float64(plotWidth) * spanY / spanX)
	height := plotHeight + 2*border

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	scale := float64(plotWidth) / spanX
	toPixel := func(p TrackPoint) (int, int) {
		x := border + int((p.X-data.MinX)*scale)
		// Image Y grows downwards.
		y := border + plotHeight - int((p.Y-data.MinY)*scale)
		return x, y
	}

	for i := 1; i < len(data.Points); i++ {
		x0, y0 := toPixel(data.Points[i-1])
		x1, y1 := toPixel(data.Points[i])
		drawLine(img, x0, y0, x1, y1, speedColor(data.Points[i].Speed, data.MinSpeed, data.MaxSpeed))
	}

	if r.config.Annotations {
		r.annotate(img, data)
	}

	return img, nil
}

// drawLine draws a 2px line between two pixels (Bresenham).
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := sign(x1 - x0)
	sy := sign(y1 - y0)
	err := dx + dy

	for {
		img.Set(x0, y0, c)
		img.Set(x0+1, y0, c)
		img.Set(x0, y0+1, c)

		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (r *TrackRenderer) annotate(img *image.RGBA, data *TrackData) {
	bounds := img.Bounds()

	// Legend gradient bar along the bottom border.
	barY := bounds.Max.Y - defaultBorder + legendBarPadding
	barWidth := bounds.Dx() - 2*defaultBorder
	for i := 0; i < barWidth; i++ {
		speed := data.MinSpeed + (data.MaxSpeed-data.MinSpeed)*float64(i)/float64(barWidth-1)
		c := speedColor(&speed, data.MinSpeed, data.MaxSpeed)
		for j := 0; j < legendBarHeight; j++ {
			img.Set(defaultBorder+i, barY+j, c)
		}
	}

	if r.font == nil {
		return
	}

	ft := freetype.NewContext()
	ft.SetDPI(dpi)
	ft.SetFont(r.font)
	ft.SetFontSize(fontSize)
	ft.SetClip(bounds)
	ft.SetDst(img)
	ft.SetSrc(image.Black)
	ft.SetHinting(font.HintingFull)

	lineHeight := ft.PointToFixed(fontSize).Ceil() * 12 / 10

	if r.config.Title != "" {
		pt := freetype.Pt(defaultBorder, lineHeight)
		_, _ = ft.DrawString(r.config.Title, pt)
	}

	legendLabel := fmt.Sprintf("%.0f - %.0f km/h", data.MinSpeed, data.MaxSpeed)
	pt := freetype.Pt(defaultBorder, barY+legendBarHeight+lineHeight)
	_, _ = ft.DrawString(legendLabel, pt)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
