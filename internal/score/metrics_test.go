package score

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensentry/internal/models"
)

func fptr(f float64) *float64 { return &f }

func bptr(b bool) *bool { return &b }

func signalWithPrices(prices ...float64) models.NormalizedSignal {
	return models.NormalizedSignal{Source: "birdeye", PriceSamples: prices, Complete: true}
}

func TestVolatilityBuckets(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		points float64
		bucket models.RiskBucket
	}{
		{"tight range", []float64{100, 101, 100.5, 100.2}, 15, models.BucketLow},
		{"moderate swing", []float64{100, 110, 105}, 10, models.BucketMedium},
		{"wide swing", []float64{100, 125, 110}, 5, models.BucketHigh},
		{"extreme swing", []float64{100, 180, 120}, 0, models.BucketCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Volatility([]models.NormalizedSignal{signalWithPrices(tt.prices...)})
			assert.Equal(t, tt.points, res.Points)
			assert.Equal(t, tt.bucket, res.Bucket)
		})
	}
}

func TestVolatilityAbsentPrices(t *testing.T) {
	res := Volatility([]models.NormalizedSignal{{Source: "goplus", Complete: true}})
	assert.Equal(t, 0.0, res.Points)
	assert.Equal(t, models.BucketNone, res.Bucket)

	// A single sample is not a series.
	res = Volatility([]models.NormalizedSignal{signalWithPrices(100)})
	assert.Equal(t, 0.0, res.Points)
}

func TestVolatilityUsesRichestSource(t *testing.T) {
	sparse := signalWithPrices(100, 200)
	rich := signalWithPrices(100, 100.5, 101, 100.2, 100.8)
	res := Volatility([]models.NormalizedSignal{sparse, rich})
	// The five-sample series wins over the two-sample one.
	assert.Equal(t, 15.0, res.Points)
}

func TestPriceStabilityBuckets(t *testing.T) {
	// Mean 100, max deviation 2% -> low bucket.
	res := PriceStability([]models.NormalizedSignal{signalWithPrices(98, 100, 102)})
	assert.Equal(t, 10.0, res.Points)

	// No samples degrades to zero points.
	res = PriceStability(nil)
	assert.Equal(t, 0.0, res.Points)
	assert.Equal(t, models.BucketNone, res.Bucket)
}

func TestWhaleConcentration(t *testing.T) {
	t.Run("no holder data", func(t *testing.T) {
		res := WhaleConcentration([]models.NormalizedSignal{{Source: "goplus", Complete: true}})
		assert.Equal(t, 0.0, res.Points)
		assert.Equal(t, models.BucketNone, res.Bucket)
	})

	t.Run("holders reported, zero whales", func(t *testing.T) {
		sig := models.NormalizedSignal{
			Source: "rugcheck",
			Holders: []models.HolderStake{
				{Address: "a", Pct: 1.5},
				{Address: "b", Pct: 0.9},
			},
			Complete: true,
		}
		res := WhaleConcentration([]models.NormalizedSignal{sig})
		assert.Equal(t, 20.0, res.Points)
	})

	t.Run("moderate whales", func(t *testing.T) {
		sig := models.NormalizedSignal{
			Source: "rugcheck",
			Holders: []models.HolderStake{
				{Address: "a", Pct: 10},
				{Address: "b", Pct: 8},
			},
			Complete: true,
		}
		res := WhaleConcentration([]models.NormalizedSignal{sig})
		assert.Equal(t, 15.0, res.Points)
		assert.Equal(t, 18.0, res.Value)
	})

	t.Run("dominant whales", func(t *testing.T) {
		sig := models.NormalizedSignal{
			Source:   "helius",
			Holders:  []models.HolderStake{{Address: "a", Pct: 45}, {Address: "b", Pct: 30}},
			Complete: true,
		}
		res := WhaleConcentration([]models.NormalizedSignal{sig})
		assert.Equal(t, 0.0, res.Points)
		assert.Equal(t, models.BucketCritical, res.Bucket)
	})

	t.Run("dedup across sources keeps max share", func(t *testing.T) {
		a := models.NormalizedSignal{
			Source:   "rugcheck",
			Holders:  []models.HolderStake{{Address: "x", Pct: 10}},
			Complete: true,
		}
		b := models.NormalizedSignal{
			Source:   "helius",
			Holders:  []models.HolderStake{{Address: "x", Pct: 12}},
			Complete: true,
		}
		res := WhaleConcentration([]models.NormalizedSignal{a, b})
		assert.Equal(t, 12.0, res.Value)
	})
}

func TestSniperPattern(t *testing.T) {
	t.Run("cluster flags the pattern", func(t *testing.T) {
		var holders []models.HolderStake
		for i := 0; i < 12; i++ {
			holders = append(holders, models.HolderStake{
				Address: fmt.Sprintf("sniper-%d", i),
				Pct:     1.0 + float64(i)*0.005,
			})
		}
		sig := models.NormalizedSignal{Source: "helius", Holders: holders, Complete: true}
		res := SniperPattern([]models.NormalizedSignal{sig})
		assert.Equal(t, 0.0, res.Points)
		assert.Equal(t, models.BucketHigh, res.Bucket)
		assert.GreaterOrEqual(t, res.Value, 10.0)
	})

	t.Run("organic distribution is clean", func(t *testing.T) {
		var holders []models.HolderStake
		for i := 0; i < 20; i++ {
			holders = append(holders, models.HolderStake{
				Address: fmt.Sprintf("holder-%d", i),
				Pct:     0.5 + float64(i)*0.3,
			})
		}
		sig := models.NormalizedSignal{Source: "helius", Holders: holders, Complete: true}
		res := SniperPattern([]models.NormalizedSignal{sig})
		assert.Equal(t, 10.0, res.Points)
	})

	t.Run("no holder data degrades to zero", func(t *testing.T) {
		res := SniperPattern(nil)
		assert.Equal(t, 0.0, res.Points)
		assert.Equal(t, models.BucketNone, res.Bucket)
	})
}

func TestVolumeLadder(t *testing.T) {
	tests := []struct {
		vol    float64
		points float64
	}{
		{2_000_000, 25},
		{150_000, 20},
		{50_000, 15},
		{5_000, 10},
		{200, 3},
	}
	for _, tt := range tests {
		sig := models.NormalizedSignal{Source: "birdeye", Volume24hUSD: fptr(tt.vol), Complete: true}
		res := Volume([]models.NormalizedSignal{sig})
		assert.Equal(t, tt.points, res.Points, "volume %v", tt.vol)
	}

	// Absent volume degrades to the floor.
	res := Volume(nil)
	assert.Equal(t, 3.0, res.Points)
	assert.Equal(t, models.BucketNone, res.Bucket)
}

func TestLiquidityLadder(t *testing.T) {
	tests := []struct {
		liq    float64
		points float64
	}{
		{600_000, 15},
		{150_000, 12},
		{60_000, 10},
		{20_000, 6},
		{500, 2},
	}
	for _, tt := range tests {
		sig := models.NormalizedSignal{Source: "dexscreener", LiquidityUSD: fptr(tt.liq), Complete: true}
		res := Liquidity([]models.NormalizedSignal{sig})
		assert.Equal(t, tt.points, res.Points, "liquidity %v", tt.liq)
	}

	res := Liquidity(nil)
	assert.Equal(t, 2.0, res.Points)
	assert.Equal(t, models.BucketNone, res.Bucket)
}

func TestLiquidityTakesHighestReport(t *testing.T) {
	a := models.NormalizedSignal{Source: "birdeye", LiquidityUSD: fptr(40_000), Complete: true}
	b := models.NormalizedSignal{Source: "dexscreener", LiquidityUSD: fptr(120_000), Complete: true}
	res := Liquidity([]models.NormalizedSignal{a, b})
	assert.Equal(t, 12.0, res.Points)
	assert.Equal(t, 120_000.0, res.Value)
}

func TestSourceCompleteness(t *testing.T) {
	mk := func(n, total int) []models.NormalizedSignal {
		signals := make([]models.NormalizedSignal, total)
		for i := range signals {
			signals[i].Complete = i < n
		}
		return signals
	}
	tests := []struct {
		complete int
		points   float64
	}{
		{7, 10}, {5, 10}, {4, 8}, {3, 6}, {2, 3}, {1, 1}, {0, 0},
	}
	for _, tt := range tests {
		res := SourceCompleteness(mk(tt.complete, 7))
		assert.Equal(t, tt.points, res.Points, "%d complete sources", tt.complete)
	}
}

func TestMetadataCombos(t *testing.T) {
	tests := []struct {
		name   string
		sig    models.NormalizedSignal
		points float64
	}{
		{"full", models.NormalizedSignal{TokenName: "Token", TokenSymbol: "TKN", HasFileMetadata: bptr(true)}, 5},
		{"name and symbol", models.NormalizedSignal{TokenName: "Token", TokenSymbol: "TKN"}, 3},
		{"symbol only", models.NormalizedSignal{TokenSymbol: "TKN"}, 1},
		{"nothing", models.NormalizedSignal{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Metadata([]models.NormalizedSignal{tt.sig})
			assert.Equal(t, tt.points, res.Points)
		})
	}
}

func TestMetadataMergesAcrossSources(t *testing.T) {
	name := models.NormalizedSignal{Source: "dexscreener", TokenName: "Token"}
	symbol := models.NormalizedSignal{Source: "solanafm", TokenSymbol: "TKN"}
	file := models.NormalizedSignal{Source: "helius", HasFileMetadata: bptr(true)}
	res := Metadata([]models.NormalizedSignal{name, symbol, file})
	assert.Equal(t, 5.0, res.Points)
}

func TestExtractAllReturnsEveryMetric(t *testing.T) {
	results := ExtractAll(nil)
	require.Len(t, results, 8)
	seen := map[string]bool{}
	for _, r := range results {
		seen[r.Name] = true
	}
	for _, name := range []string{
		MetricVolatility, MetricWhale, MetricSniper, MetricVolume,
		MetricLiquidity, MetricStability, MetricCompleteness, MetricMetadata,
	} {
		assert.True(t, seen[name], "missing metric %s", name)
	}
}
