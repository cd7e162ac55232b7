package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tokensentry/internal/ai"
	"tokensentry/internal/cache"
	"tokensentry/internal/config"
	"tokensentry/internal/gates"
	httpapi "tokensentry/internal/interfaces/http"
	"tokensentry/internal/persistence/postgres"
	"tokensentry/internal/pipeline"
	"tokensentry/internal/providers"
	"tokensentry/internal/telemetry"
)

func serveCmd(configPath *string) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, workers)
		},
	}
	cmd.Flags().IntVar(&workers, "webhook-workers", 2, "background webhook workers")
	return cmd
}

func runServer(ctx context.Context, cfg config.Config, workers int) error {
	metrics := telemetry.NewRegistry()
	store := cache.NewAuto(cfg.Cache.RedisAddr)

	var history pipeline.HistorySink
	var historian httpapi.Historian
	if cfg.History.Enabled {
		repo, err := postgres.Open(cfg.History.DSN, cfg.History.GetTimeout())
		if err != nil {
			return err
		}
		defer repo.Close()
		history = repo
		historian = repo
		log.Info().Msg("analysis history enabled")
	}

	var enricher ai.Enricher
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		enricher = ai.NewOpenAIEnricher(cfg.AI)
		log.Info().Str("model", cfg.AI.Model).Msg("ai enrichment enabled")
	}

	engine := pipeline.New(pipeline.Options{
		Providers:     providers.Build(cfg.Providers, metrics),
		Gate:          gates.NewEvaluator(cfg.Gate),
		Enricher:      enricher,
		AITimeout:     cfg.AI.GetTimeout(),
		Cache:         store,
		History:       history,
		Metrics:       metrics,
		Logger:        log.Logger,
		TTL:           ttlPolicy(cfg.Cache),
		SourceTimeout: cfg.Pipeline.GetSourceTimeout(),
	})

	pool := pipeline.NewWorkerPool(engine, log.Logger, 64)
	pool.Start(ctx, workers)

	server := httpapi.NewServer(cfg.HTTP, &httpapi.Handlers{
		Engine:  engine,
		Cache:   store,
		Queue:   pool,
		History: historian,
	}, metrics.Handler(), log.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	pool.Wait()
	return nil
}

func ttlPolicy(c config.CacheConfig) pipeline.TTLPolicy {
	return pipeline.TTLPolicy{
		Webhook: c.GetTTLWebhook(),
		API:     c.GetTTLAPI(),
		Quick:   c.GetTTLQuick(),
		Deep:    c.GetTTLDeep(),
	}
}
