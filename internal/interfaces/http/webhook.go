package http

import (
	"encoding/json"
	"io"
	"net/http"

	"tokensentry/internal/models"
	"tokensentry/internal/pipeline"
)

// HeliusMintWebhook handles POST /webhooks/helius/mint. Helius delivery is
// inconsistent: the body may be a JSON object, an array of events, or a
// double-encoded JSON string. The handler tolerates all three, queues a deep
// analysis, and acks fast. Errors after parsing still return 200 so Helius
// does not retry-storm.
func (h *Handlers) HeliusMintWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "empty webhook body")
		return
	}

	payload, ok := decodeWebhookPayload(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "webhook body is not a JSON object")
		return
	}

	mint, ok := extractMint(payload)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ignored",
			"message": "no token mint address in payload",
		})
		return
	}
	if _, err := models.ValidateTokenAddress(mint); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ignored",
			"message": "payload mint is not a valid token address",
		})
		return
	}

	queued := h.Queue.Enqueue(pipeline.DeepRequest(mint))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "received",
		"mint":   mint,
		"queued": queued,
	})
}

// decodeWebhookPayload unwraps the three shapes Helius sends: object,
// array of events (first wins), and string-wrapped JSON.
func decodeWebhookPayload(raw []byte) (map[string]any, bool) {
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, false
	}
	for depth := 0; depth < 3; depth++ {
		switch v := top.(type) {
		case map[string]any:
			return v, true
		case []any:
			if len(v) == 0 {
				return nil, false
			}
			top = v[0]
		case string:
			var inner any
			if err := json.Unmarshal([]byte(v), &inner); err != nil {
				return nil, false
			}
			top = inner
		default:
			return nil, false
		}
	}
	return nil, false
}

// extractMint pulls the token address out of a mint event. Top-level "mint"
// is the documented field; enhanced transaction events carry it under
// tokenTransfers instead.
func extractMint(payload map[string]any) (string, bool) {
	if mint, ok := payload["mint"].(string); ok && mint != "" {
		return mint, true
	}
	if transfers, ok := payload["tokenTransfers"].([]any); ok {
		for _, t := range transfers {
			entry, ok := t.(map[string]any)
			if !ok {
				continue
			}
			if mint, ok := entry["mint"].(string); ok && mint != "" {
				return mint, true
			}
		}
	}
	return "", false
}
