package normalize

import (
	"encoding/json"

	"tokensentry/internal/models"
)

// solanafmPayload mirrors the SolanaFM token info response.
type solanafmPayload struct {
	Token *struct {
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		Decimals    *int   `json:"decimals"`
		TokenHolder *int   `json:"tokenHolder"`
	} `json:"token"`
}

func normalizeSolanaFM(payload json.RawMessage) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: SourceSolanaFM}

	var p solanafmPayload
	if !unmarshal(payload, &p) || p.Token == nil {
		return sig
	}

	sig.TokenName = p.Token.Name
	sig.TokenSymbol = p.Token.Symbol
	if p.Token.TokenHolder != nil {
		sig.HolderCount = p.Token.TokenHolder
	}

	sig.Complete = true
	return sig
}
