package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// heliusPayload mirrors the Helius token metadata response plus the largest
// token accounts the provider layer attaches.
type heliusPayload struct {
	OnChainMetadata *struct {
		Metadata *struct {
			Data *struct {
				Name   string `json:"name"`
				Symbol string `json:"symbol"`
				URI    string `json:"uri"`
			} `json:"data"`
			IsMutable *bool `json:"isMutable"`
		} `json:"metadata"`
	} `json:"onChainMetadata"`
	MintAuthority   *string `json:"mintAuthority"`
	FreezeAuthority *string `json:"freezeAuthority"`
	LargestAccounts []struct {
		Address string  `json:"address"`
		Pct     float64 `json:"pct"`
	} `json:"largestAccounts"`
}

func normalizeHelius(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceHelius}

	var p heliusPayload
	if !unmarshal(payload, &p) {
		return sig
	}
	if p.OnChainMetadata == nil && p.MintAuthority == nil && p.FreezeAuthority == nil && len(p.LargestAccounts) == 0 {
		return sig
	}

	if p.MintAuthority != nil {
		sig.MintAuthorityActive = boolPtr(*p.MintAuthority != "")
	}
	if p.FreezeAuthority != nil {
		sig.FreezeAuthorityActive = boolPtr(*p.FreezeAuthority != "")
	}

	if p.OnChainMetadata != nil && p.OnChainMetadata.Metadata != nil {
		md := p.OnChainMetadata.Metadata
		sig.MetadataMutable = md.IsMutable
		if md.Data != nil {
			sig.TokenName = md.Data.Name
			sig.TokenSymbol = md.Data.Symbol
			sig.HasFileMetadata = boolPtr(md.Data.URI != "")
		}
	}

	var top10 float64
	for i, acct := range p.LargestAccounts {
		sig.Holders = append(sig.Holders, models.HolderStake{Address: acct.Address, Pct: acct.Pct})
		if i < 10 {
			top10 += acct.Pct
		}
	}
	if len(p.LargestAccounts) > 0 {
		sig.Top10HolderPct = floatPtr(top10)
	}

	sig.Complete = true
	return sig
}
