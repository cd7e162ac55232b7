package providers

import (
	"context"
	"fmt"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// RugCheck queries the RugCheck token report API.
type RugCheck struct {
	*client
	baseURL string
}

func NewRugCheck(cfg ClientConfig, metrics *telemetry.Registry) *RugCheck {
	return &RugCheck{
		client:  newClient(normalize.SourceRugCheck, cfg, nil, metrics),
		baseURL: cfg.BaseURL,
	}
}

func (r *RugCheck) Name() string { return normalize.SourceRugCheck }

func (r *RugCheck) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()
	url := fmt.Sprintf("%s/tokens/%s/report", r.baseURL, tokenAddress)
	payload, err := r.get(ctx, url)
	return r.result(start, payload, err)
}
