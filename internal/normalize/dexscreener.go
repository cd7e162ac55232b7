package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// dexscreenerPayload mirrors the DexScreener token-pairs response.
type dexscreenerPayload struct {
	Pairs []struct {
		Liquidity *struct {
			USD *float64 `json:"usd"`
		} `json:"liquidity"`
		Volume *struct {
			H24 *float64 `json:"h24"`
		} `json:"volume"`
		BaseToken *struct {
			Address string `json:"address"`
			Name    string `json:"name"`
			Symbol  string `json:"symbol"`
		} `json:"baseToken"`
	} `json:"pairs"`
}

func normalizeDexScreener(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceDexScreener}

	var p dexscreenerPayload
	if !unmarshal(payload, &p) || len(p.Pairs) == 0 {
		return sig
	}

	// Aggregate across pairs: liquidity and volume add up per venue.
	var liquidity, volume float64
	var haveLiquidity, haveVolume bool
	for _, pair := range p.Pairs {
		if pair.Liquidity != nil && pair.Liquidity.USD != nil {
			liquidity += *pair.Liquidity.USD
			haveLiquidity = true
		}
		if pair.Volume != nil && pair.Volume.H24 != nil {
			volume += *pair.Volume.H24
			haveVolume = true
		}
	}
	if haveLiquidity {
		sig.LiquidityUSD = floatPtr(liquidity)
	}
	if haveVolume {
		sig.Volume24hUSD = floatPtr(volume)
	}

	lpCount := len(p.Pairs)
	sig.LPProviderCount = intPtr(lpCount)

	if bt := p.Pairs[0].BaseToken; bt != nil {
		sig.TokenName = bt.Name
		sig.TokenSymbol = bt.Symbol
	}

	sig.Complete = true
	return sig
}
