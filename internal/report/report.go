// Package report defines the assessment report document.
package report

import (
	"strings"
	"time"

	"github.com/dshills/wellcheck/internal/content"
	"github.com/dshills/wellcheck/internal/scoring"
)

const (
	Tool  = "wellcheck"
	Title = "Mental Well-Being Report"

	// ScaleSlots is the width of the printed band marker.
	ScaleSlots = 5
)

// Report is the top-level output object.
type Report struct {
	Tool        string                 `json:"tool"`
	Version     string                 `json:"version"`
	ID          string                 `json:"id"`
	GeneratedAt time.Time              `json:"generated_at"`
	PreparedFor string                 `json:"prepared_for,omitempty"`
	Profile     string                 `json:"profile"`
	Input       Input                  `json:"input"`
	Result      Result                 `json:"result"`
	Scale       Scale                  `json:"scale"`
	Content     content.Content        `json:"content"`
	Breakdown   []scoring.Contribution `json:"breakdown"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// Input describes where the answers came from.
type Input struct {
	AnswersFile string `json:"answers_file,omitempty"`
	AnswersHash string `json:"answers_hash"`
}

// Result is the engine output plus the context needed to read it.
type Result struct {
	SeverityIndex int                `json:"severity_index"`
	MaxIndex      int                `json:"max_index"`
	RiskBand      scoring.RiskBand   `json:"risk_band"`
	ClusterID     int                `json:"cluster_id"`
	Thresholds    scoring.Thresholds `json:"thresholds"`
}

// Scale places the band on a fixed-width marker.
type Scale struct {
	Position int `json:"position"`
	Slots    int `json:"slots"`
}

// ScaleFor returns the marker position for band: first, middle, or last slot.
func ScaleFor(band scoring.RiskBand) Scale {
	s := Scale{Slots: ScaleSlots}
	switch band {
	case scoring.BandModerate:
		s.Position = ScaleSlots / 2
	case scoring.BandHigh:
		s.Position = ScaleSlots - 1
	}
	return s
}

// Marker draws the scale, e.g. "□□■□□".
func (s Scale) Marker() string {
	var b strings.Builder
	for i := 0; i < s.Slots; i++ {
		if i == s.Position {
			b.WriteString("■")
		} else {
			b.WriteString("□")
		}
	}
	return b.String()
}

// MeetsThreshold reports whether band is at or above threshold.
func MeetsThreshold(band, threshold scoring.RiskBand) bool {
	return band.Rank() >= threshold.Rank()
}
