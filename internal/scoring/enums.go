package scoring

import "strings"

// RiskBand is the coarse three-level classification derived from the severity index.
type RiskBand string

const (
	BandLow      RiskBand = "Low"
	BandModerate RiskBand = "Moderate"
	BandHigh     RiskBand = "High"
)

// Bands returns every risk band in ascending order.
func Bands() []RiskBand {
	return []RiskBand{BandLow, BandModerate, BandHigh}
}

func (b RiskBand) Valid() bool {
	switch b {
	case BandLow, BandModerate, BandHigh:
		return true
	}
	return false
}

// Rank returns the band's position in ascending order, or -1 for an invalid band.
func (b RiskBand) Rank() int {
	switch b {
	case BandLow:
		return 0
	case BandModerate:
		return 1
	case BandHigh:
		return 2
	default:
		return -1
	}
}

// ParseRiskBand matches a band name case-insensitively.
func ParseRiskBand(s string) (RiskBand, bool) {
	for _, b := range Bands() {
		if strings.EqualFold(strings.TrimSpace(s), string(b)) {
			return b, true
		}
	}
	return "", false
}
