package score

import "tokensentry/internal/models"

// Composite scoring contract constants. These are policy values carried over
// as-is; tune them in one place only.
const (
	// securityBase is awarded when the security gate passed.
	securityBase = 60.0
	// warningPenalty is subtracted per accumulated gate warning.
	warningPenalty = 8.0
	// baseFloor keeps a passed gate from going below this after penalties.
	baseFloor = 10.0
	// failedBase is the fixed base when the gate failed; the pipeline
	// normally short-circuits before scoring, but a direct call stays sane.
	failedBase = 10.0
	// traditionalCap reserves headroom: a perfect traditional score is
	// deliberately unreachable.
	traditionalCap = 95.0
	// failedCap bounds the score whenever security failed.
	failedCap = 25.0
)

// Composite combines the security verdict with metric results into the
// weighted traditional score. Deterministic: identical inputs always yield
// identical output.
func Composite(verdict models.SecurityVerdict, metrics []models.MetricResult) models.CompositeScore {
	breakdown := make(map[string]float64, len(metrics)+1)

	base := failedBase
	if verdict.Passed {
		base = securityBase - warningPenalty*float64(len(verdict.Warnings))
		if base < baseFloor {
			base = baseFloor
		}
	}
	breakdown["security_base"] = base

	total := base
	for _, m := range metrics {
		breakdown[m.Name] = m.Points
		total += m.Points
	}

	cap := traditionalCap
	if !verdict.Passed {
		cap = failedCap
	}
	if total > cap {
		total = cap
	}
	if total < 0 {
		total = 0
	}

	return models.CompositeScore{
		TraditionalScore: total,
		Breakdown:        breakdown,
	}
}
