// Package pipeline implements ResolutionPipeline, RscPipeline, and
// DiscoveryFeedback: the candidate-to-admission flow that sits between
// CandidateSources and the AdmitSet (§4.4, §4.5, §4.6).
package pipeline

import "math"

// QuickRatio approximates sequence similarity in [0,1], rounded to three
// decimals, forcing 1 when the two bodies are exactly the same length
// (§4.5, §9 "similarity metric"). This mirrors the source's use of
// difflib's real_quick_ratio: an upper bound on edit-distance similarity
// based only on the two lengths, cheap enough to run over every candidate
// body without a true alignment pass.
func QuickRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == lb {
		return 1
	}
	total := la + lb
	if total == 0 {
		return 1
	}
	shorter := la
	if lb < shorter {
		shorter = lb
	}
	ratio := 2 * float64(shorter) / float64(total)
	return math.Round(ratio*1000) / 1000
}
