package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tokensentry/internal/ai"
	"tokensentry/internal/config"
	"tokensentry/internal/gates"
	"tokensentry/internal/models"
	"tokensentry/internal/pipeline"
	"tokensentry/internal/providers"
)

func analyzeCmd(configPath *string) *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:   "analyze <mint>",
		Short: "Run a one-shot token analysis and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			typ := models.AnalysisQuick
			if deep {
				typ = models.AnalysisDeep
			}

			var enricher ai.Enricher
			if deep && cfg.AI.Enabled && cfg.AI.APIKey != "" {
				enricher = ai.NewOpenAIEnricher(cfg.AI)
			}

			engine := pipeline.New(pipeline.Options{
				Providers:     providers.Build(cfg.Providers, nil),
				Gate:          gates.NewEvaluator(cfg.Gate),
				Enricher:      enricher,
				AITimeout:     cfg.AI.GetTimeout(),
				Logger:        log.Logger,
				SourceTimeout: cfg.Pipeline.GetSourceTimeout(),
			})

			analysis, err := engine.Analyze(cmd.Context(), pipeline.Request{
				TokenAddress: args[0],
				Type:         typ,
				SourceEvent:  pipeline.EventAPI,
				Force:        true,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "run the deep pipeline with AI enrichment")
	return cmd
}
