package score

import "tokensentry/internal/models"

// Classify maps the final score and security outcome to the risk level,
// recommendation, and GO/WATCH/NO decision. Ordered rules, first match wins;
// a failed security gate dominates any score.
func Classify(finalScore float64, security models.SecurityVerdict) models.Verdict {
	switch {
	case !security.Passed:
		return models.Verdict{
			RiskLevel:      models.RiskCritical,
			Recommendation: "avoid",
			Decision:       models.DecisionNo,
		}
	case finalScore >= 80:
		return models.Verdict{
			RiskLevel:      models.RiskLow,
			Recommendation: "consider",
			Decision:       models.DecisionGo,
		}
	case finalScore >= 60:
		return models.Verdict{
			RiskLevel:      models.RiskMedium,
			Recommendation: "caution",
			Decision:       models.DecisionWatch,
		}
	default:
		return models.Verdict{
			RiskLevel:      models.RiskHigh,
			Recommendation: "avoid",
			Decision:       models.DecisionNo,
		}
	}
}
