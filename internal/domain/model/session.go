package model

import "time"

// Session is the unit of ownership: one in-memory owner mutates it at a
// time, and tiers accumulate monotonically until the session ends. No
// internal locking is provided; concurrent writers must be serialized by the
// embedding application.
type Session struct {
	ID       string    `json:"id"`
	ArtistID string    `json:"artist_id,omitempty"`
	StartAt  time.Time `json:"start_at"`

	Strokes   []*StrokeDNA   `json:"strokes"`
	Images    []*ImageDNA    `json:"images"`
	Temporals []*TemporalDNA `json:"temporals"`

	TotalStrokes int     `json:"total_strokes"`
	Confidence   float64 `json:"confidence"`

	Artist *ArtistContext `json:"artist,omitempty"`

	AestheticScore *float64 `json:"aesthetic_score,omitempty"`
	AestheticMode  string   `json:"aesthetic_mode,omitempty"`
}

// NewSession creates an empty session owned by the caller.
func NewSession(id, artistID string, start time.Time) *Session {
	return &Session{
		ID:       id,
		ArtistID: artistID,
		StartAt:  start,
		Artist:   NewArtistContext(artistID, start),
	}
}

// AddStroke appends a stroke fingerprint, keeping TotalStrokes equal to the
// stroke list length.
func (s *Session) AddStroke(d *StrokeDNA) {
	s.Strokes = append(s.Strokes, d)
	s.TotalStrokes = len(s.Strokes)
}

// AddImage appends an image fingerprint.
func (s *Session) AddImage(d *ImageDNA) {
	s.Images = append(s.Images, d)
}

// AddTemporal appends a temporal fingerprint.
func (s *Session) AddTemporal(d *TemporalDNA) {
	s.Temporals = append(s.Temporals, d)
}

// LatestImage returns the most recent image fingerprint, or nil.
func (s *Session) LatestImage() *ImageDNA {
	if len(s.Images) == 0 {
		return nil
	}
	return s.Images[len(s.Images)-1]
}

// LatestTemporal returns the most recent temporal fingerprint, or nil.
func (s *Session) LatestTemporal() *TemporalDNA {
	if len(s.Temporals) == 0 {
		return nil
	}
	return s.Temporals[len(s.Temporals)-1]
}

// Age reports how old the session is at now.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.StartAt)
}

// Clone returns a deep copy. Record pointers are copied as-is: records are
// immutable after creation, so sharing them is safe; the slices, artist
// context, and aesthetic score are duplicated.
func (s *Session) Clone() *Session {
	c := *s
	c.Strokes = append([]*StrokeDNA(nil), s.Strokes...)
	c.Images = append([]*ImageDNA(nil), s.Images...)
	c.Temporals = append([]*TemporalDNA(nil), s.Temporals...)
	if s.Artist != nil {
		c.Artist = s.Artist.Clone()
	}
	if s.AestheticScore != nil {
		v := *s.AestheticScore
		c.AestheticScore = &v
	}
	return &c
}
