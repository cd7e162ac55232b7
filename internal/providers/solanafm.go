package providers

import (
	"context"
	"fmt"
	"time"

	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/telemetry"
)

// SolanaFM queries the SolanaFM on-chain token info API.
type SolanaFM struct {
	*client
	baseURL string
}

func NewSolanaFM(cfg ClientConfig, metrics *telemetry.Registry) *SolanaFM {
	return &SolanaFM{
		client:  newClient(normalize.SourceSolanaFM, cfg, nil, metrics),
		baseURL: cfg.BaseURL,
	}
}

func (s *SolanaFM) Name() string { return normalize.SourceSolanaFM }

func (s *SolanaFM) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	start := time.Now()
	url := fmt.Sprintf("%s/tokens/%s", s.baseURL, tokenAddress)
	payload, err := s.get(ctx, url)
	return s.result(start, payload, err)
}
