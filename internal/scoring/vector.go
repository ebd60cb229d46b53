package scoring

import "math"

// FillMissing replaces NaN and infinite entries with 0 in place and returns
// how many were replaced. Classifiers assume a fully populated vector.
func FillMissing(vec []float64) int {
	filled := 0
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			vec[i] = 0
			filled++
		}
	}
	return filled
}

// Reweight returns a copy of vec with the first k entries multiplied by factor.
// k larger than the vector is clamped.
func Reweight(vec []float64, k int, factor float64) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)
	if k > len(out) {
		k = len(out)
	}
	for i := 0; i < k; i++ {
		out[i] *= factor
	}
	return out
}
