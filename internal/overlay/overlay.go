// Package overlay holds the data published for the 2D layer drawn over the scene.
package overlay

import (
	"chart-workspace/internal/chart"
	"chart-workspace/internal/screen"
)

// Cursor is the pointer shape the shell should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

func (c Cursor) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	default:
		return "default"
	}
}

// MarshalText renders the cursor name.
func (c Cursor) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Marker is the horizontal hover line and its price label.
type Marker struct {
	Visible bool    `json:"visible"`
	Price   float64 `json:"price"`
	// Y is the pixel row of the hovered point.
	Y float32 `json:"y"`
}

// State is the overlay snapshot. Producers overwrite fields in place each frame.
type State struct {
	Symbol    string        `json:"symbol"`
	Stats     chart.Stats   `json:"stats"`
	HasStats  bool          `json:"hasStats"`
	Ticks     [5]string     `json:"ticks"`
	Marker    Marker        `json:"marker"`
	Bounds    screen.Bounds `json:"bounds"`
	HasBounds bool          `json:"hasBounds"`
	Hovering  bool          `json:"hovering"`
	Cursor    Cursor        `json:"cursor"`
	Instances int           `json:"instances"`
}

// SetStats publishes s when ok, and clears the stats otherwise.
func (s *State) SetStats(st chart.Stats, ok bool) {
	s.Stats, s.HasStats = st, ok
}

// HideMarker hides the hover line and keeps its last price.
func (s *State) HideMarker() {
	s.Marker.Visible = false
}

// MarkerY returns the marker row clamped to the surface bounds.
func (s *State) MarkerY() float32 {
	y := s.Marker.Y
	if !s.HasBounds {
		return y
	}
	return min(max(y, s.Bounds.Top), s.Bounds.Bottom)
}
