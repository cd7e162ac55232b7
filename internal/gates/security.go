// Package gates implements the hard security gate that runs before any
// market-quality scoring. A failed gate short-circuits the pipeline:
// security failure dominates all market signals.
package gates

import (
	"fmt"

	"tokensentry/internal/models"
)

// SecurityGateConfig contains thresholds for warning rules.
type SecurityGateConfig struct {
	// Top-10 holder concentration above this percentage raises a warning.
	Top10WarnPct float64 `yaml:"top10_warn_pct"`
	// Fewer LP providers than this raises a warning.
	MinLPProviders int `yaml:"min_lp_providers"`
}

// DefaultSecurityGateConfig returns production gate thresholds.
func DefaultSecurityGateConfig() SecurityGateConfig {
	return SecurityGateConfig{
		Top10WarnPct:   50.0,
		MinLPProviders: 2,
	}
}

// Evaluator applies critical-issue and warning rules to normalized signals.
type Evaluator struct {
	config SecurityGateConfig
}

// NewEvaluator creates a security gate evaluator.
func NewEvaluator(config SecurityGateConfig) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate derives a SecurityVerdict from the full signal set. Sources may
// disagree on boolean safety facts; the gate is conservative and treats a
// fact as unsafe if any source reports it unsafe.
func (e *Evaluator) Evaluate(signals []models.NormalizedSignal) models.SecurityVerdict {
	verdict := models.SecurityVerdict{
		Passed:         true,
		CriticalIssues: []string{},
		Warnings:       []string{},
	}

	// Critical rules: any true fails the gate.
	if src, ok := anyTrue(signals, func(s models.NormalizedSignal) *bool { return s.MintAuthorityActive }); ok {
		verdict.CriticalIssues = append(verdict.CriticalIssues,
			fmt.Sprintf("active mint authority (%s)", src))
	}
	if src, ok := anyTrue(signals, func(s models.NormalizedSignal) *bool { return s.FreezeAuthorityActive }); ok {
		verdict.CriticalIssues = append(verdict.CriticalIssues,
			fmt.Sprintf("active freeze authority (%s)", src))
	}
	if src, ok := anyTrue(signals, func(s models.NormalizedSignal) *bool { return s.Rugged }); ok {
		verdict.CriticalIssues = append(verdict.CriticalIssues,
			fmt.Sprintf("rug-pull indicator confirmed (%s)", src))
	}
	verdict.Passed = len(verdict.CriticalIssues) == 0

	// Warning rules: accumulate, never fail on their own.
	if src, ok := anyTrue(signals, func(s models.NormalizedSignal) *bool { return s.MetadataMutable }); ok {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("token metadata is mutable (%s)", src))
	}

	if src, lp, ok := minLPProviders(signals); ok && lp < e.config.MinLPProviders {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("low LP provider count: %d (%s)", lp, src))
	}

	if missingFileMetadata(signals) {
		verdict.Warnings = append(verdict.Warnings, "token file metadata missing")
	}

	if src, top10, ok := maxTop10(signals); ok && top10 > e.config.Top10WarnPct {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("top-10 holders control %.1f%% of supply (%s)", top10, src))
	}

	return verdict
}

// anyTrue scans all sources for a boolean fact and returns the first source
// reporting it true. Absent values never count as either true or false.
func anyTrue(signals []models.NormalizedSignal, field func(models.NormalizedSignal) *bool) (string, bool) {
	for _, sig := range signals {
		if v := field(sig); v != nil && *v {
			return sig.Source, true
		}
	}
	return "", false
}

// minLPProviders takes the lowest LP provider count any source reports.
// Lowest wins: a single source seeing a thin pool is enough to warn.
func minLPProviders(signals []models.NormalizedSignal) (string, int, bool) {
	var src string
	var min int
	found := false
	for _, sig := range signals {
		if sig.LPProviderCount == nil {
			continue
		}
		if !found || *sig.LPProviderCount < min {
			min = *sig.LPProviderCount
			src = sig.Source
			found = true
		}
	}
	return src, min, found
}

// missingFileMetadata reports true only when at least one source checked the
// fact and none confirmed the metadata exists. All-absent stays silent.
func missingFileMetadata(signals []models.NormalizedSignal) bool {
	checked := false
	for _, sig := range signals {
		if sig.HasFileMetadata == nil {
			continue
		}
		checked = true
		if *sig.HasFileMetadata {
			return false
		}
	}
	return checked
}

// maxTop10 takes the highest reported top-10 concentration across sources.
func maxTop10(signals []models.NormalizedSignal) (string, float64, bool) {
	var src string
	var max float64
	found := false
	for _, sig := range signals {
		if sig.Top10HolderPct == nil {
			continue
		}
		if !found || *sig.Top10HolderPct > max {
			max = *sig.Top10HolderPct
			src = sig.Source
			found = true
		}
	}
	return src, max, found
}
