package model

import "image"

// Point is a single raw input sample from the capture surface. Coordinates
// are in canvas pixels. TimeMS is milliseconds since the stroke began; a
// stroke whose points all carry zero timestamps is treated as untimed and
// encoders fall back to a fixed inter-point delta.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
	Tilt     float64 `json:"tilt"`
	Twist    float64 `json:"twist"`
	TimeMS   float64 `json:"time_ms"`
}

// StrokeInput is a completed stroke as delivered by the capture surface.
// Encoders must never mutate it.
type StrokeInput struct {
	StrokeID     string  `json:"stroke_id"`
	SessionID    string  `json:"session_id"`
	Points       []Point `json:"points"`
	Tool         string  `json:"tool"`
	Color        string  `json:"color"`
	BrushSize    float64 `json:"brush_size"`
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
}

// Snapshot is a captured canvas image handed to the cold path. Snapshots are
// transient inputs and are never persisted.
type Snapshot struct {
	ID     string
	Canvas image.Image
}
