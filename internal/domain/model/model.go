// Package model contains the DNA record types passed between layers.
//
// Records are created exactly once by their encoder and are immutable after
// creation; derived scores (confidence, aesthetic) are recomputable snapshots
// and never mutate records in place.
package model

import (
	"time"

	"github.com/strokeforge/dna/internal/domain/vector"
)

// LearningPhase classifies where an artist sits on the learning curve.
type LearningPhase string

const (
	PhaseExploration LearningPhase = "exploration"
	PhaseRefinement  LearningPhase = "refinement"
	PhaseMastery     LearningPhase = "mastery"
)

// NormalizedBounds is a stroke's bounding box after scale-invariant
// normalization to the reference canvas.
type NormalizedBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// StrokeDNA is the synchronous fingerprint of a single completed stroke.
type StrokeDNA struct {
	ID           string            `json:"id"`
	StrokeID     string            `json:"stroke_id"`
	SessionID    string            `json:"session_id"`
	Vector       vector.Vector     `json:"vector"`
	Bounds       *NormalizedBounds `json:"bounds,omitempty"`
	Tool         string            `json:"tool"`
	Color        string            `json:"color"`
	Timestamp    time.Time         `json:"timestamp"`
	EncodingTime time.Duration     `json:"encoding_time"`
}

// DominantColor is one of up to five k-means cluster centers over the
// snapshot's pixels. Channels are in [0,255]; Weight is the cluster's share
// of sampled pixels.
type DominantColor struct {
	R      float64 `json:"r"`
	G      float64 `json:"g"`
	B      float64 `json:"b"`
	Weight float64 `json:"weight"`
}

// TextureSummary captures coarse texture statistics of a snapshot.
type TextureSummary struct {
	Complexity float64 `json:"complexity"` // edge density
	Contrast   float64 `json:"contrast"`   // intensity range
	Energy     float64 `json:"energy"`     // histogram uniformity
}

// ImageDNA is the asynchronous fingerprint of a canvas snapshot.
type ImageDNA struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"session_id"`
	SnapshotID     string          `json:"snapshot_id"`
	Vector         vector.Vector   `json:"vector"`
	DominantColors []DominantColor `json:"dominant_colors"`
	Texture        TextureSummary  `json:"texture"`
	CanvasWidth    int             `json:"canvas_width"`
	CanvasHeight   int             `json:"canvas_height"`
	Timestamp      time.Time       `json:"timestamp"`
	EncodingTime   time.Duration   `json:"encoding_time"`
}

// TemporalDNA is the asynchronous fingerprint of session behavior over time.
type TemporalDNA struct {
	ID               string        `json:"id"`
	SessionID        string        `json:"session_id"`
	ArtistID         string        `json:"artist_id,omitempty"`
	Vector           vector.Vector `json:"vector"`
	Phase            LearningPhase `json:"phase"`
	SkillProgression float64       `json:"skill_progression"` // [0,1]
	FatigueLevel     float64       `json:"fatigue_level"`     // [0,1]
	FocusScore       float64       `json:"focus_score"`       // [0,1]
	FlowState        bool          `json:"flow_state"`
	SessionCount     int           `json:"session_count"`
	StrokeCount      int           `json:"stroke_count"`
	Timestamp        time.Time     `json:"timestamp"`
	EncodingTime     time.Duration `json:"encoding_time"`
}
