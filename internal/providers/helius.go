package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// Helius queries the Helius token metadata API.
type Helius struct {
	*client
	baseURL string
	apiKey  string
}

func NewHelius(cfg ClientConfig, metrics *telemetry.Registry) *Helius {
	return &Helius{
		client:  newClient(normalize.SourceHelius, cfg, nil, metrics),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (h *Helius) Name() string { return normalize.SourceHelius }

func (h *Helius) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()

	url := fmt.Sprintf("%s/v0/token-metadata?api-key=%s", h.baseURL, h.apiKey)
	body := fmt.Sprintf(`{"mintAccounts":[%q],"includeOffChain":false}`, tokenAddress)
	raw, err := h.do(ctx, "POST", url, strings.NewReader(body), "application/json")
	if err != nil {
		return h.result(start, nil, err)
	}

	// The endpoint answers with one entry per requested mint.
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		return h.result(start, nil, fmt.Errorf("unexpected token-metadata response"))
	}
	return h.result(start, entries[0], nil)
}
