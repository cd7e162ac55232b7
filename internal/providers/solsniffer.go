package providers

import (
	"context"
	"fmt"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// SolSniffer queries the SolSniffer token audit API.
type SolSniffer struct {
	*client
	baseURL string
}

func NewSolSniffer(cfg ClientConfig, metrics *telemetry.Registry) *SolSniffer {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["X-API-KEY"] = cfg.APIKey
	}
	return &SolSniffer{
		client:  newClient(normalize.SourceSolSniffer, cfg, headers, metrics),
		baseURL: cfg.BaseURL,
	}
}

func (s *SolSniffer) Name() string { return normalize.SourceSolSniffer }

func (s *SolSniffer) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()
	url := fmt.Sprintf("%s/token/%s", s.baseURL, tokenAddress)
	payload, err := s.get(ctx, url)
	return s.result(start, payload, err)
}
