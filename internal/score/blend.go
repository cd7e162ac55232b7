package score

import (
	"math"

	"tokensentry/internal/models"
)

// AI blending contract constants.
const (
	traditionalWeight = 0.6
	aiWeight          = 0.4
	// agreementWindow is the max score gap still counted as agreement.
	agreementWindow = 10.0
	// agreementBonus is added flat when both scorers agree.
	agreementBonus = 15.0
)

// Blend merges the traditional score with an optional AI score. A nil
// AIResult (AI unavailable, failed, or timed out) falls back to the
// traditional-only path; the second return reports whether the result is
// AI-enhanced.
func Blend(traditional float64, ai *models.AIResult) (float64, bool) {
	if ai == nil {
		return traditional, false
	}

	final := traditionalWeight*traditional + aiWeight*ai.AIScore
	if math.Abs(traditional-ai.AIScore) <= agreementWindow {
		final += agreementBonus
	}

	if final > 100 {
		final = 100
	}
	if final < 0 {
		final = 0
	}
	return final, true
}
