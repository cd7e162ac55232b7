package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// birdeyePayload bundles the price endpoint with recent trades. The provider
// layer merges both calls into one payload so the normalizer stays pure.
type birdeyePayload struct {
	Price *struct {
		Value     *float64 `json:"value"`
		Liquidity *float64 `json:"liquidity"`
		V24hUSD   *float64 `json:"v24hUSD"`
	} `json:"price"`
	Trades *struct {
		Items []struct {
			Price float64 `json:"price"`
		} `json:"items"`
	} `json:"trades"`
}

func normalizeBirdeye(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceBirdeye}

	var p birdeyePayload
	if !unmarshal(payload, &p) || (p.Price == nil && p.Trades == nil) {
		return sig
	}

	if p.Price != nil {
		sig.LiquidityUSD = p.Price.Liquidity
		sig.Volume24hUSD = p.Price.V24hUSD
	}
	if p.Trades != nil {
		// Most recent trades first; volatility uses at most 20 samples.
		for i, t := range p.Trades.Items {
			if i >= 20 {
				break
			}
			sig.PriceSamples = append(sig.PriceSamples, t.Price)
		}
	}

	sig.Complete = true
	return sig
}
