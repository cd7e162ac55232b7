// Package pipeline orchestrates one token analysis end to end: provider
// fan-out, normalization, the security gate, metric scoring, optional AI
// blending, and the final verdict.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tokensentry/internal/ai"
	"tokensentry/internal/cache"
	"tokensentry/internal/gates"
	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/providers"
	"tokensentry/internal/score"
	"tokensentry/internal/telemetry"
)

// Source events name who asked for the analysis; each carries its own cache
// TTL.
const (
	EventWebhook = "webhook"
	EventAPI     = "api"
	EventQuick   = "quick"
	EventDeep    = "deep"
)

// fallbackTTL caches degraded results briefly so a provider outage does not
// pin a useless answer for hours.
const fallbackTTL = 2 * time.Minute

// Request describes one analysis to run.
type Request struct {
	TokenAddress string
	Type         models.AnalysisType
	SourceEvent  string
	// Force bypasses the cache lookup (the write still happens).
	Force bool
}

// TTLPolicy maps a source event to the cache lifetime of its result.
type TTLPolicy struct {
	Webhook time.Duration
	API     time.Duration
	Quick   time.Duration
	Deep    time.Duration
}

// For returns the TTL for a source event, defaulting to the API lifetime.
func (p TTLPolicy) For(event string) time.Duration {
	switch event {
	case EventWebhook:
		return p.Webhook
	case EventQuick:
		return p.Quick
	case EventDeep:
		return p.Deep
	default:
		return p.API
	}
}

// HistorySink archives completed analyses. Writes are fire-and-forget.
type HistorySink interface {
	Save(ctx context.Context, analysis *models.Analysis) error
}

// Engine runs the analysis pipeline. All collaborators except providers and
// the gate may be nil; the engine degrades rather than fails.
type Engine struct {
	providers     []providers.Provider
	gate          *gates.Evaluator
	enricher      ai.Enricher
	aiTimeout     time.Duration
	store         cache.Store
	history       HistorySink
	metrics       *telemetry.Registry
	log           zerolog.Logger
	ttl           TTLPolicy
	sourceTimeout time.Duration
}

// Options wires the engine collaborators.
type Options struct {
	Providers     []providers.Provider
	Gate          *gates.Evaluator
	Enricher      ai.Enricher
	AITimeout     time.Duration
	Cache         cache.Store
	History       HistorySink
	Metrics       *telemetry.Registry
	Logger        zerolog.Logger
	TTL           TTLPolicy
	SourceTimeout time.Duration
}

// New builds an Engine, filling in safe defaults for absent options.
func New(opts Options) *Engine {
	if opts.Gate == nil {
		opts.Gate = gates.NewEvaluator(gates.DefaultSecurityGateConfig())
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 8 * time.Second
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = 20 * time.Second
	}
	return &Engine{
		providers:     opts.Providers,
		gate:          opts.Gate,
		enricher:      opts.Enricher,
		aiTimeout:     opts.AITimeout,
		store:         opts.Cache,
		history:       opts.History,
		metrics:       opts.Metrics,
		log:           opts.Logger,
		ttl:           opts.TTL,
		sourceTimeout: opts.SourceTimeout,
	}
}

// Analyze runs the full pipeline for one token. Identical cached requests
// return the stored Analysis with CacheHit set.
func (e *Engine) Analyze(ctx context.Context, req Request) (*models.Analysis, error) {
	start := time.Now()

	addr, err := models.ValidateTokenAddress(req.TokenAddress)
	if err != nil {
		return nil, err
	}
	if req.Type != models.AnalysisDeep {
		req.Type = models.AnalysisQuick
	}
	if req.SourceEvent == "" {
		req.SourceEvent = EventAPI
	}

	key := models.CacheKey(addr, req.Type)
	if !req.Force {
		if hit, ok := e.store.Get(ctx, key); ok {
			if e.metrics != nil {
				e.metrics.CacheHits.Inc()
			}
			out := *hit
			out.Meta.CacheHit = true
			return &out, nil
		}
		if e.metrics != nil {
			e.metrics.CacheMisses.Inc()
		}
	}

	results := e.fanOut(ctx, addr)
	signals := normalize.All(results)

	succeeded := 0
	var sourcesUsed []string
	for _, sig := range signals {
		if sig.Complete {
			succeeded++
			sourcesUsed = append(sourcesUsed, sig.Source)
		}
	}
	if sourcesUsed == nil {
		sourcesUsed = []string{}
	}

	analysis := &models.Analysis{
		AnalysisID:      uuid.NewString(),
		TokenAddress:    addr,
		Type:            req.Type,
		DataSourcesUsed: sourcesUsed,
		Warnings:        []string{},
		CreatedAt:       time.Now().UTC(),
		Meta: models.AnalysisMeta{
			SourcesAttempted: len(results),
			SourcesSucceeded: succeeded,
			SourceEvent:      req.SourceEvent,
		},
	}

	ttl := e.ttl.For(req.SourceEvent)
	outcome := "ok"

	switch {
	case succeeded == 0:
		e.fallback(analysis)
		ttl = fallbackTTL
		outcome = "fallback"
	default:
		e.evaluate(ctx, req, signals, analysis)
		if !analysis.Security.Passed {
			outcome = "security_fail"
		}
	}

	analysis.Meta.ProcessingTimeMs = time.Since(start).Milliseconds()

	e.store.Put(ctx, key, analysis, ttl)
	e.archive(analysis)

	if e.metrics != nil {
		e.metrics.ObserveAnalysis(string(req.Type), outcome, string(analysis.Decision), time.Since(start))
	}
	e.log.Info().
		Str("token", addr).
		Str("type", string(req.Type)).
		Str("event", req.SourceEvent).
		Float64("score", analysis.FinalScore).
		Str("decision", string(analysis.Decision)).
		Int("sources", succeeded).
		Int64("ms", analysis.Meta.ProcessingTimeMs).
		Msg("analysis complete")

	return analysis, nil
}

// evaluate runs the gate, metrics, optional AI, and verdict on a populated
// signal set.
func (e *Engine) evaluate(ctx context.Context, req Request, signals []models.NormalizedSignal, analysis *models.Analysis) {
	verdict := e.gate.Evaluate(signals)
	analysis.Security = verdict
	analysis.Warnings = append(analysis.Warnings, verdict.Warnings...)

	if !verdict.Passed {
		// Security failure dominates: no metric can rescue the token, so
		// the market extractors and the AI step are skipped entirely.
		analysis.Composite = score.Composite(verdict, nil)
		analysis.FinalScore = analysis.Composite.TraditionalScore
		analysis.Meta.SecurityShortCircuit = true
		e.classify(analysis)
		return
	}

	metrics := score.ExtractAll(signals)
	analysis.Metrics = metrics
	analysis.Composite = score.Composite(verdict, metrics)

	var aiResult *models.AIResult
	if req.Type == models.AnalysisDeep && e.enricher != nil {
		aiResult = e.enrich(ctx, analysis)
	}
	analysis.AI = aiResult

	final, enhanced := score.Blend(analysis.Composite.TraditionalScore, aiResult)
	analysis.FinalScore = final
	analysis.Meta.AIEnhanced = enhanced
	e.classify(analysis)
}

func (e *Engine) classify(analysis *models.Analysis) {
	v := score.Classify(analysis.FinalScore, analysis.Security)
	analysis.RiskLevel = v.RiskLevel
	analysis.Recommendation = v.Recommendation
	analysis.Decision = v.Decision
}

// enrich calls the LLM once under its own deadline. Any failure logs and
// returns nil; the pipeline never retries or blocks on AI.
func (e *Engine) enrich(ctx context.Context, analysis *models.Analysis) *models.AIResult {
	ctx, cancel := context.WithTimeout(ctx, e.aiTimeout)
	defer cancel()

	res, err := e.enricher.Infer(ctx, ai.PromptInput{
		TokenAddress:     analysis.TokenAddress,
		Security:         analysis.Security,
		Metrics:          analysis.Metrics,
		TraditionalScore: analysis.Composite.TraditionalScore,
		DataSources:      analysis.DataSourcesUsed,
	})
	if e.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.AIRequests.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		e.log.Warn().Err(err).Str("token", analysis.TokenAddress).Msg("ai enrichment failed, continuing without")
		return nil
	}
	return res
}

// fallback fills a degraded but usable result when every source failed.
func (e *Engine) fallback(analysis *models.Analysis) {
	analysis.Security = models.SecurityVerdict{
		Passed:         true,
		CriticalIssues: []string{},
		Warnings:       []string{},
	}
	analysis.Composite = models.CompositeScore{
		TraditionalScore: 35,
		Breakdown:        map[string]float64{"fallback": 35},
	}
	analysis.FinalScore = 35
	analysis.RiskLevel = models.RiskHigh
	analysis.Recommendation = "avoid"
	analysis.Decision = models.DecisionNo
	analysis.Warnings = append(analysis.Warnings,
		"all data sources unavailable, fallback analysis with no on-chain data")
	e.log.Warn().Str("token", analysis.TokenAddress).Msg("all sources failed, serving fallback analysis")
}

// fanOut queries every provider concurrently, each under its own deadline.
func (e *Engine) fanOut(ctx context.Context, tokenAddress string) []models.ServiceResult {
	results := make([]models.ServiceResult, len(e.providers))
	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func(i int, p providers.Provider) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
			defer cancel()
			results[i] = p.Fetch(fetchCtx, tokenAddress)
		}(i, p)
	}
	wg.Wait()
	return results
}

// archive ships the analysis to the history sink off the request path.
func (e *Engine) archive(analysis *models.Analysis) {
	if e.history == nil {
		return
	}
	a := *analysis
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.history.Save(ctx, &a); err != nil {
			e.log.Warn().Err(err).Str("analysis_id", a.AnalysisID).Msg("history save failed")
		}
	}()
}
