package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// goplusPayload mirrors the GOplus Solana token security response. Flags
// arrive as "1"/"0" strings; numeric rates as decimal strings.
type goplusPayload struct {
	Result map[string]struct {
		Mintable struct {
			Status string `json:"status"`
		} `json:"mintable"`
		Freezable struct {
			Status string `json:"status"`
		} `json:"freezable"`
		MetadataMutable struct {
			Status string `json:"status"`
		} `json:"metadata_mutable"`
		IsRugPull      string `json:"is_rug_pull"`
		HolderCount    string `json:"holder_count"`
		Top10HolderPct string `json:"top_10_holder_rate"`
		LPCount        string `json:"lp_holder_count"`
		Holders        []struct {
			Address string `json:"account"`
			Percent string `json:"percent"`
		} `json:"holders"`
	} `json:"result"`
}

func normalizeGoPlus(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceGoPlus}

	var p goplusPayload
	if !unmarshal(payload, &p) || len(p.Result) == 0 {
		return sig
	}

	// The result map is keyed by mint address; a single entry is expected.
	for _, tok := range p.Result {
		sig.MintAuthorityActive = flagStr(tok.Mintable.Status)
		sig.FreezeAuthorityActive = flagStr(tok.Freezable.Status)
		sig.MetadataMutable = flagStr(tok.MetadataMutable.Status)
		sig.Rugged = flagStr(tok.IsRugPull)

		if hc := numStr(tok.HolderCount); hc != nil {
			sig.HolderCount = intPtr(int(*hc))
		}
		if lp := numStr(tok.LPCount); lp != nil {
			sig.LPProviderCount = intPtr(int(*lp))
		}
		if top := numStr(tok.Top10HolderPct); top != nil {
			// GOplus reports a 0..1 rate; scoring works in percent.
			sig.Top10HolderPct = floatPtr(*top * 100)
		}
		for _, h := range tok.Holders {
			if pct := numStr(h.Percent); pct != nil {
				sig.Holders = append(sig.Holders, models.HolderStake{
					Address: h.Address,
					Pct:     *pct * 100,
				})
			}
		}
		break
	}

	sig.Complete = true
	return sig
}
