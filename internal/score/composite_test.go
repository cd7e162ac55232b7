package score

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensentry/internal/models"
)

func passedVerdict(warnings ...string) models.SecurityVerdict {
	if warnings == nil {
		warnings = []string{}
	}
	return models.SecurityVerdict{Passed: true, CriticalIssues: []string{}, Warnings: warnings}
}

func failedVerdict() models.SecurityVerdict {
	return models.SecurityVerdict{
		Passed:         false,
		CriticalIssues: []string{"active mint authority (goplus)"},
		Warnings:       []string{},
	}
}

func TestCompositeBase(t *testing.T) {
	got := Composite(passedVerdict(), nil)
	assert.Equal(t, 60.0, got.TraditionalScore)
	assert.Equal(t, 60.0, got.Breakdown["security_base"])
}

func TestCompositeWarningPenalty(t *testing.T) {
	got := Composite(passedVerdict("w1", "w2"), nil)
	assert.Equal(t, 44.0, got.TraditionalScore)
}

func TestCompositeBaseFloor(t *testing.T) {
	warnings := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := Composite(passedVerdict(warnings...), nil)
	// 60 - 7*8 would be 4; the floor holds it at 10.
	assert.Equal(t, 10.0, got.TraditionalScore)
}

func TestCompositeCap(t *testing.T) {
	metrics := []models.MetricResult{
		{Name: MetricVolatility, Points: 15},
		{Name: MetricWhale, Points: 20},
		{Name: MetricSniper, Points: 10},
		{Name: MetricVolume, Points: 25},
		{Name: MetricLiquidity, Points: 15},
		{Name: MetricStability, Points: 10},
		{Name: MetricCompleteness, Points: 10},
		{Name: MetricMetadata, Points: 5},
	}
	got := Composite(passedVerdict(), metrics)
	// 60 + 110 points, capped.
	assert.Equal(t, 95.0, got.TraditionalScore)
}

func TestCompositeFailedSecurityDominates(t *testing.T) {
	metrics := []models.MetricResult{
		{Name: MetricVolume, Points: 25},
		{Name: MetricLiquidity, Points: 15},
	}
	got := Composite(failedVerdict(), metrics)
	// Base drops to 10 and the cap to 25 no matter how good the market looks.
	assert.Equal(t, 25.0, got.TraditionalScore)
	assert.Equal(t, 10.0, got.Breakdown["security_base"])
}

func TestCompositeFailedWithoutMetrics(t *testing.T) {
	got := Composite(failedVerdict(), nil)
	assert.Equal(t, 10.0, got.TraditionalScore)
}

func TestCompositeDeterministic(t *testing.T) {
	verdict := passedVerdict("one warning")
	metrics := []models.MetricResult{{Name: MetricVolume, Points: 20}}
	first := Composite(verdict, metrics)
	second := Composite(verdict, metrics)
	require.Equal(t, first, second)
}

func TestCompositeBoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	maxPoints := []float64{15, 20, 10, 25, 15, 10, 10, 5}

	for i := 0; i < 500; i++ {
		verdict := passedVerdict()
		warnings := rng.Intn(6)
		for w := 0; w < warnings; w++ {
			verdict.Warnings = append(verdict.Warnings, "w")
		}
		if rng.Intn(4) == 0 {
			verdict = failedVerdict()
		}

		var metrics []models.MetricResult
		for j, mp := range maxPoints {
			metrics = append(metrics, models.MetricResult{
				Name:   ExtractAll(nil)[j].Name,
				Points: float64(rng.Intn(int(mp) + 1)),
			})
		}

		got := Composite(verdict, metrics)
		assert.GreaterOrEqual(t, got.TraditionalScore, 0.0)
		assert.LessOrEqual(t, got.TraditionalScore, 95.0)
		if !verdict.Passed {
			assert.LessOrEqual(t, got.TraditionalScore, 25.0)
		}
	}
}
