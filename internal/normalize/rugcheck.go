package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// rugcheckPayload mirrors the RugCheck token report.
type rugcheckPayload struct {
	Rugged     *bool `json:"rugged"`
	Score      *int  `json:"score"`
	TopHolders []struct {
		Address string  `json:"address"`
		Pct     float64 `json:"pct"`
	} `json:"topHolders"`
	Markets []struct {
		LP struct {
			LockedPct   *float64 `json:"lpLockedPct"`
			ProviderCnt *int     `json:"lpProviders"`
		} `json:"lp"`
	} `json:"markets"`
	FileMeta *struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"fileMeta"`
	MintAuthority   *string `json:"mintAuthority"`
	FreezeAuthority *string `json:"freezeAuthority"`
}

func normalizeRugCheck(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceRugCheck}

	var p rugcheckPayload
	if !unmarshal(payload, &p) {
		return sig
	}
	// A report with none of the expected blocks is treated as malformed.
	if p.Rugged == nil && p.Score == nil && len(p.TopHolders) == 0 && len(p.Markets) == 0 {
		return sig
	}

	sig.Rugged = p.Rugged
	if p.MintAuthority != nil {
		sig.MintAuthorityActive = boolPtr(*p.MintAuthority != "")
	}
	if p.FreezeAuthority != nil {
		sig.FreezeAuthorityActive = boolPtr(*p.FreezeAuthority != "")
	}

	var top10 float64
	for i, h := range p.TopHolders {
		sig.Holders = append(sig.Holders, models.HolderStake{Address: h.Address, Pct: h.Pct})
		if i < 10 {
			top10 += h.Pct
		}
	}
	if len(p.TopHolders) > 0 {
		sig.Top10HolderPct = floatPtr(top10)
	}

	if len(p.Markets) > 0 {
		lp := p.Markets[0].LP
		if lp.LockedPct != nil {
			sig.LPLocked = boolPtr(*lp.LockedPct >= 50)
		}
		if lp.ProviderCnt != nil {
			sig.LPProviderCount = lp.ProviderCnt
		}
	}

	if p.FileMeta != nil {
		sig.HasFileMetadata = boolPtr(p.FileMeta.Name != "" || p.FileMeta.Symbol != "")
		sig.TokenName = p.FileMeta.Name
		sig.TokenSymbol = p.FileMeta.Symbol
	} else {
		sig.HasFileMetadata = boolPtr(false)
	}

	sig.Complete = true
	return sig
}
