package triage

import "math"

const (
	confidenceFloor   = 0.1
	confidenceBase    = 0.25
	confidenceWeight  = 0.70
	confidenceCeiling = 0.95
)

// EstimateConfidence blends match similarities into a score in [0.1, 0.95].
// Lexical matching never justifies full certainty, hence the ceiling.
func EstimateConfidence(similarities []float64) float64 {
	if len(similarities) == 0 {
		return confidenceFloor
	}
	best := similarities[0]
	for _, s := range similarities[1:] {
		if s > best {
			best = s
		}
	}
	best = math.Max(0, math.Min(best, 1))

	confidence := math.Min(confidenceBase+best*confidenceWeight, confidenceCeiling)
	return roundTo(confidence, 2)
}

func roundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
