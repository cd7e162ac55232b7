package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// solsnifferPayload mirrors the SolSniffer token info response.
type solsnifferPayload struct {
	TokenData *struct {
		Name           string `json:"tokenName"`
		Symbol         string `json:"tokenSymbol"`
		MintDisabled   *bool  `json:"mintDisabled"`
		FreezeDisabled *bool  `json:"freezeDisabled"`
		AuditRisk      *struct {
			MintDisabled   *bool `json:"mintDisabled"`
			FreezeDisabled *bool `json:"freezeDisabled"`
			LPBurned       *bool `json:"lpBurned"`
		} `json:"auditRisk"`
	} `json:"tokenData"`
	Score *float64 `json:"snifscore"`
}

func normalizeSolSniffer(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceSolSniffer}

	var p solsnifferPayload
	if !unmarshal(payload, &p) || p.TokenData == nil {
		return sig
	}

	td := p.TokenData
	sig.TokenName = td.Name
	sig.TokenSymbol = td.Symbol

	mintDisabled := td.MintDisabled
	freezeDisabled := td.FreezeDisabled
	if td.AuditRisk != nil {
		if mintDisabled == nil {
			mintDisabled = td.AuditRisk.MintDisabled
		}
		if freezeDisabled == nil {
			freezeDisabled = td.AuditRisk.FreezeDisabled
		}
		if td.AuditRisk.LPBurned != nil {
			// Burned LP is the strongest form of a locked pool.
			sig.LPLocked = td.AuditRisk.LPBurned
		}
	}
	if mintDisabled != nil {
		sig.MintAuthorityActive = boolPtr(!*mintDisabled)
	}
	if freezeDisabled != nil {
		sig.FreezeAuthorityActive = boolPtr(!*freezeDisabled)
	}

	sig.Complete = true
	return sig
}
