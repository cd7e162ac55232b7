package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensentry/internal/models"
	"tokensentry/internal/pipeline"
)

func TestHeliusWebhookObjectBody(t *testing.T) {
	queue := &stubQueue{}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	body := fmt.Sprintf(`{"mint": %q, "slot": 12345, "signature": "sig"}`, testMint)
	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.queued, 1)
	assert.Equal(t, testMint, queue.queued[0].TokenAddress)
	assert.Equal(t, models.AnalysisDeep, queue.queued[0].Type)
	assert.Equal(t, pipeline.EventWebhook, queue.queued[0].SourceEvent)
}

func TestHeliusWebhookArrayBody(t *testing.T) {
	queue := &stubQueue{}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	body := fmt.Sprintf(`[{"mint": %q}]`, testMint)
	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.queued, 1)
}

func TestHeliusWebhookDoubleEncodedBody(t *testing.T) {
	queue := &stubQueue{}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	inner := fmt.Sprintf(`{"mint": %q}`, testMint)
	outer, err := json.Marshal(inner)
	require.NoError(t, err)

	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", string(outer))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.queued, 1)
	assert.Equal(t, testMint, queue.queued[0].TokenAddress)
}

func TestHeliusWebhookTokenTransfersFallback(t *testing.T) {
	queue := &stubQueue{}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	body := fmt.Sprintf(`{"type": "TRANSFER", "tokenTransfers": [{"mint": %q, "amount": 10}]}`, testMint)
	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.queued, 1)
}

func TestHeliusWebhookWithoutMintIsIgnored(t *testing.T) {
	queue := &stubQueue{}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", `{"type": "UNKNOWN"}`)

	// Acked without queueing so Helius does not retry.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, queue.queued)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ignored", body["status"])
}

func TestHeliusWebhookInvalidMintIsIgnored(t *testing.T) {
	queue := &stubQueue{}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", `{"mint": "not-base58!!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, queue.queued)
}

func TestHeliusWebhookMalformedBody(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, nil, &stubQueue{})
	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", `{{{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeliusWebhookFullQueueStillAcks(t *testing.T) {
	queue := &stubQueue{full: true}
	srv := newTestServer(&stubAnalyzer{}, nil, queue)

	body := fmt.Sprintf(`{"mint": %q}`, testMint)
	rec := doRequest(t, srv, "POST", "/webhooks/helius/mint", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["queued"])
}

func TestDecodeWebhookPayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"object", `{"mint": "x"}`, true},
		{"array of objects", `[{"mint": "x"}]`, true},
		{"string-wrapped object", `"{\"mint\": \"x\"}"`, true},
		{"string-wrapped array", `"[{\"mint\": \"x\"}]"`, true},
		{"empty array", `[]`, false},
		{"bare number", `42`, false},
		{"garbage", `not json`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := decodeWebhookPayload([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "x", payload["mint"])
			}
		})
	}
}
