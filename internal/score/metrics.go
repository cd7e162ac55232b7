// Package score computes market-quality metrics from normalized signals and
// combines them with the security verdict into the composite score.
//
// Every extractor is a pure function over the signal set. Missing inputs
// degrade to the metric's lowest point value; an extractor never fails.
package score

import (
	"sort"

	"tokensentry/internal/models"
)

// Metric names used in score breakdowns.
const (
	MetricVolatility   = "volatility"
	MetricWhale        = "whale_concentration"
	MetricSniper       = "sniper_pattern"
	MetricVolume       = "volume_24h"
	MetricLiquidity    = "liquidity"
	MetricStability    = "price_stability"
	MetricCompleteness = "source_completeness"
	MetricMetadata     = "metadata"
)

// whaleThresholdPct defines a whale: any address controlling more than 2%
// of supply.
const whaleThresholdPct = 2.0

// sniperBandPct is the tolerance band for the coordinated-buying signature:
// holdings within ±0.05% of each other.
const sniperBandPct = 0.1

// sniperClusterMin is the cluster size that flags a sniper pattern.
const sniperClusterMin = 10

// maxPriceSamples bounds volatility computation to the most recent trades.
const maxPriceSamples = 20

// ExtractAll runs every metric extractor over the signal set. Extractors are
// independent; order carries no meaning.
func ExtractAll(signals []models.NormalizedSignal) []models.MetricResult {
	return []models.MetricResult{
		Volatility(signals),
		WhaleConcentration(signals),
		SniperPattern(signals),
		Volume(signals),
		Liquidity(signals),
		PriceStability(signals),
		SourceCompleteness(signals),
		Metadata(signals),
	}
}

// priceSamples picks the richest price series any source reported, capped to
// the most recent maxPriceSamples trades.
func priceSamples(signals []models.NormalizedSignal) []float64 {
	var best []float64
	for _, sig := range signals {
		if len(sig.PriceSamples) > len(best) {
			best = sig.PriceSamples
		}
	}
	if len(best) > maxPriceSamples {
		best = best[:maxPriceSamples]
	}
	return best
}

func meanMinMax(samples []float64) (mean, min, max float64) {
	min, max = samples[0], samples[0]
	var sum float64
	for _, p := range samples {
		sum += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return sum / float64(len(samples)), min, max
}

// Volatility computes (max-min)/mean * 100 over the recent price samples.
func Volatility(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricVolatility, Bucket: models.BucketNone}

	samples := priceSamples(signals)
	if len(samples) < 2 {
		return res
	}
	mean, min, max := meanMinMax(samples)
	if mean <= 0 {
		return res
	}

	vol := (max - min) / mean * 100
	res.Value = vol
	switch {
	case vol <= 5:
		res.Bucket, res.Points = models.BucketLow, 15
	case vol <= 15:
		res.Bucket, res.Points = models.BucketMedium, 10
	case vol <= 30:
		res.Bucket, res.Points = models.BucketHigh, 5
	default:
		res.Bucket, res.Points = models.BucketCritical, 0
	}
	return res
}

// PriceStability scores the maximum deviation from the mean price.
func PriceStability(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricStability, Bucket: models.BucketNone}

	samples := priceSamples(signals)
	if len(samples) < 2 {
		return res
	}
	mean, min, max := meanMinMax(samples)
	if mean <= 0 {
		return res
	}

	deviation := (max - mean) / mean * 100
	if low := (mean - min) / mean * 100; low > deviation {
		deviation = low
	}
	res.Value = deviation
	switch {
	case deviation <= 5:
		res.Bucket, res.Points = models.BucketLow, 10
	case deviation <= 15:
		res.Bucket, res.Points = models.BucketMedium, 6
	case deviation <= 30:
		res.Bucket, res.Points = models.BucketHigh, 3
	default:
		res.Bucket, res.Points = models.BucketCritical, 0
	}
	return res
}

// dedupedHolders merges holder lists across sources by address, keeping the
// highest share each address was reported with, sorted by share descending.
func dedupedHolders(signals []models.NormalizedSignal) []models.HolderStake {
	byAddr := make(map[string]float64)
	for _, sig := range signals {
		for _, h := range sig.Holders {
			if h.Address == "" {
				continue
			}
			if pct, ok := byAddr[h.Address]; !ok || h.Pct > pct {
				byAddr[h.Address] = h.Pct
			}
		}
	}
	holders := make([]models.HolderStake, 0, len(byAddr))
	for addr, pct := range byAddr {
		holders = append(holders, models.HolderStake{Address: addr, Pct: pct})
	}
	sort.Slice(holders, func(i, j int) bool {
		if holders[i].Pct != holders[j].Pct {
			return holders[i].Pct > holders[j].Pct
		}
		return holders[i].Address < holders[j].Address
	})
	return holders
}

// WhaleConcentration counts holders above the whale threshold and scores the
// supply share they control together. No holder data at all degrades to
// zero points; reported-and-empty is the best case.
func WhaleConcentration(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricWhale, Bucket: models.BucketNone}

	reported := false
	for _, sig := range signals {
		if len(sig.Holders) > 0 {
			reported = true
			break
		}
	}
	if !reported {
		return res
	}

	var control float64
	whales := 0
	for _, h := range dedupedHolders(signals) {
		if h.Pct > whaleThresholdPct {
			whales++
			control += h.Pct
		}
	}
	res.Value = control
	switch {
	case whales == 0:
		res.Bucket, res.Points = models.BucketNone, 20
	case control < 30:
		res.Bucket, res.Points = models.BucketLow, 15
	case control <= 60:
		res.Bucket, res.Points = models.BucketMedium, 10
	default:
		res.Bucket, res.Points = models.BucketCritical, 0
	}
	return res
}

// SniperPattern looks for the coordinated early-buying signature: a cluster
// of at least sniperClusterMin of the top-50 holders whose shares sit within
// the same narrow band.
func SniperPattern(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricSniper, Bucket: models.BucketNone}

	holders := dedupedHolders(signals)
	if len(holders) == 0 {
		return res
	}
	if len(holders) > 50 {
		holders = holders[:50]
	}

	pcts := make([]float64, len(holders))
	for i, h := range holders {
		pcts[i] = h.Pct
	}
	sort.Float64s(pcts)

	cluster := 1
	lo := 0
	for hi := 1; hi < len(pcts); hi++ {
		for pcts[hi]-pcts[lo] > sniperBandPct {
			lo++
		}
		if n := hi - lo + 1; n > cluster {
			cluster = n
		}
	}

	res.Value = float64(cluster)
	if cluster >= sniperClusterMin {
		res.Bucket, res.Points = models.BucketHigh, 0
		return res
	}
	res.Points = 10
	return res
}

// maxFloat takes the highest value any source reported for a numeric field.
func maxFloat(signals []models.NormalizedSignal, field func(models.NormalizedSignal) *float64) (float64, bool) {
	var max float64
	found := false
	for _, sig := range signals {
		v := field(sig)
		if v == nil {
			continue
		}
		if !found || *v > max {
			max = *v
			found = true
		}
	}
	return max, found
}

// Volume scores 24h trading volume in USD.
func Volume(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricVolume, Bucket: models.BucketHigh, Points: 3}

	vol, ok := maxFloat(signals, func(s models.NormalizedSignal) *float64 { return s.Volume24hUSD })
	if !ok {
		res.Bucket = models.BucketNone
		return res
	}
	res.Value = vol
	switch {
	case vol >= 1_000_000:
		res.Bucket, res.Points = models.BucketNone, 25
	case vol >= 100_000:
		res.Bucket, res.Points = models.BucketLow, 20
	case vol >= 10_000:
		res.Bucket, res.Points = models.BucketMedium, 15
	case vol >= 1_000:
		res.Bucket, res.Points = models.BucketHigh, 10
	default:
		res.Bucket, res.Points = models.BucketHigh, 3
	}
	return res
}

// Liquidity scores pool depth in USD.
func Liquidity(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricLiquidity, Bucket: models.BucketHigh, Points: 2}

	liq, ok := maxFloat(signals, func(s models.NormalizedSignal) *float64 { return s.LiquidityUSD })
	if !ok {
		res.Bucket = models.BucketNone
		return res
	}
	res.Value = liq
	switch {
	case liq >= 500_000:
		res.Bucket, res.Points = models.BucketNone, 15
	case liq >= 100_000:
		res.Bucket, res.Points = models.BucketLow, 12
	case liq >= 50_000:
		res.Bucket, res.Points = models.BucketMedium, 10
	case liq >= 10_000:
		res.Bucket, res.Points = models.BucketHigh, 6
	default:
		res.Bucket, res.Points = models.BucketHigh, 2
	}
	return res
}

// SourceCompleteness rewards the number of sources that produced a usable
// signal.
func SourceCompleteness(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricCompleteness}

	complete := 0
	for _, sig := range signals {
		if sig.Complete {
			complete++
		}
	}
	res.Value = float64(complete)
	switch {
	case complete >= 5:
		res.Bucket, res.Points = models.BucketNone, 10
	case complete == 4:
		res.Bucket, res.Points = models.BucketLow, 8
	case complete == 3:
		res.Bucket, res.Points = models.BucketMedium, 6
	case complete == 2:
		res.Bucket, res.Points = models.BucketHigh, 3
	case complete == 1:
		res.Bucket, res.Points = models.BucketHigh, 1
	default:
		res.Bucket, res.Points = models.BucketCritical, 0
	}
	return res
}

// Metadata scores how complete the token metadata is across sources.
func Metadata(signals []models.NormalizedSignal) models.MetricResult {
	res := models.MetricResult{Name: MetricMetadata, Bucket: models.BucketNone}

	var name, symbol, file bool
	for _, sig := range signals {
		if sig.TokenName != "" {
			name = true
		}
		if sig.TokenSymbol != "" {
			symbol = true
		}
		if sig.HasFileMetadata != nil && *sig.HasFileMetadata {
			file = true
		}
	}

	switch {
	case name && symbol && file:
		res.Points = 5
	case name && symbol:
		res.Points = 3
	case name || symbol:
		res.Points = 1
	}
	res.Value = res.Points
	return res
}
