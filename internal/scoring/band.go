package scoring

// AssignBand maps a severity index to a risk band. It is total and
// monotonic for any ordered thresholds.
func AssignBand(index int, t Thresholds) RiskBand {
	switch {
	case index >= t.High:
		return BandHigh
	case index >= t.Moderate:
		return BandModerate
	default:
		return BandLow
	}
}
