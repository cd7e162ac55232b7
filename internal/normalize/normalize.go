// Package normalize maps heterogeneous provider payloads onto the common
// NormalizedSignal shape. Each source gets an explicit tagged schema; unknown
// or missing fields stay nil instead of defaulting, so downstream layers can
// tell "absent" from "present but zero".
package normalize

import (
	"encoding/json"
	"strconv"

	"tokensentry/internal/models"
)

// Source names as reported by the provider layer.
const (
	SourceGoPlus      = "goplus"
	SourceRugCheck    = "rugcheck"
	SourceSolSniffer  = "solsniffer"
	SourceBirdeye     = "birdeye"
	SourceDexScreener = "dexscreener"
	SourceHelius      = "helius"
	SourceSolanaFM    = "solanafm"
)

// Normalize converts one raw provider response into a NormalizedSignal.
// Pure function: failed fetches and structurally malformed payloads yield
// an incomplete signal, never an error.
func Normalize(res models.ServiceResult) models.NormalizedSignal {
	sig := models.NormalizedSignal{Source: res.Source}
	if res.Status != models.SourceOK || len(res.Payload) == 0 {
		return sig
	}

	switch res.Source {
	case SourceGoPlus:
		return normalizeGoPlus(res.Payload)
	case SourceRugCheck:
		return normalizeRugCheck(res.Payload)
	case SourceSolSniffer:
		return normalizeSolSniffer(res.Payload)
	case SourceBirdeye:
		return normalizeBirdeye(res.Payload)
	case SourceDexScreener:
		return normalizeDexScreener(res.Payload)
	case SourceHelius:
		return normalizeHelius(res.Payload)
	case SourceSolanaFM:
		return normalizeSolanaFM(res.Payload)
	default:
		// Unknown source: keep it incomplete rather than guessing a schema.
		return sig
	}
}

// All normalizes a batch of provider responses, preserving per-source
// values. Reconciliation of disagreeing sources belongs to the security
// gate and metric extractors, not here.
func All(results []models.ServiceResult) []models.NormalizedSignal {
	signals := make([]models.NormalizedSignal, 0, len(results))
	for _, res := range results {
		signals = append(signals, Normalize(res))
	}
	return signals
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

// flagStr parses GOplus-style "1"/"0" string flags. Empty means absent.
func flagStr(s string) *bool {
	switch s {
	case "1":
		return boolPtr(true)
	case "0":
		return boolPtr(false)
	default:
		return nil
	}
}

// numStr parses numeric fields some providers ship as strings.
func numStr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func unmarshal(payload json.RawMessage, v any) bool {
	return json.Unmarshal(payload, v) == nil
}
