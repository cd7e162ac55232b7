package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensentry/internal/ai"
	"tokensentry/internal/cache"
	"tokensentry/internal/models"
	"tokensentry/internal/normalize"
	"tokensentry/internal/providers"
	"tokensentry/internal/score"
)

const testMint = "So11111111111111111111111111111111111111112"

type fakeProvider struct {
	name    string
	payload string
	status  models.SourceStatus
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, tokenAddress string) models.ServiceResult {
	res := models.ServiceResult{Source: f.name, FetchedAt: time.Now(), Status: f.status}
	if f.status == models.SourceOK {
		res.Payload = json.RawMessage(f.payload)
	} else {
		res.ErrDetail = "fetch failed"
	}
	return res
}

func ok(name, payload string) providers.Provider {
	return &fakeProvider{name: name, payload: payload, status: models.SourceOK}
}

func down(name string) providers.Provider {
	return &fakeProvider{name: name, status: models.SourceError}
}

// perfectProviders returns five healthy sources describing a clean token with
// a strong market.
func perfectProviders() []providers.Provider {
	return []providers.Provider{
		ok(normalize.SourceGoPlus, `{
			"result": {"`+testMint+`": {
				"mintable": {"status": "0"},
				"freezable": {"status": "0"},
				"metadata_mutable": {"status": "0"},
				"is_rug_pull": "0",
				"holder_count": "5000",
				"top_10_holder_rate": "0.18",
				"lp_holder_count": "6"
			}}
		}`),
		ok(normalize.SourceRugCheck, `{
			"rugged": false,
			"score": 900,
			"mintAuthority": "",
			"freezeAuthority": "",
			"topHolders": [
				{"address": "h1", "pct": 1.8},
				{"address": "h2", "pct": 1.2}
			],
			"markets": [{"lp": {"lpLockedPct": 96, "lpProviders": 6}}],
			"fileMeta": {"name": "Example", "symbol": "EXM"}
		}`),
		ok(normalize.SourceBirdeye, `{
			"price": {"value": 1.0, "liquidity": 600000, "v24hUSD": 2000000},
			"trades": {"items": [
				{"price": 1.00}, {"price": 1.01}, {"price": 0.99}, {"price": 1.005}
			]}
		}`),
		ok(normalize.SourceDexScreener, `{
			"pairs": [
				{
					"liquidity": {"usd": 450000},
					"volume": {"h24": 1500000},
					"baseToken": {"address": "`+testMint+`", "name": "Example", "symbol": "EXM"}
				},
				{
					"liquidity": {"usd": 100000},
					"volume": {"h24": 400000}
				}
			]
		}`),
		ok(normalize.SourceHelius, `{
			"onChainMetadata": {"metadata": {
				"data": {"name": "Example", "symbol": "EXM", "uri": "https://arweave.net/x"},
				"isMutable": false
			}},
			"mintAuthority": "",
			"freezeAuthority": "",
			"largestAccounts": [
				{"address": "h1", "pct": 1.8},
				{"address": "h2", "pct": 1.2}
			]
		}`),
	}
}

type stubEnricher struct {
	result *models.AIResult
	err    error
	calls  int
}

func (s *stubEnricher) Infer(ctx context.Context, input ai.PromptInput) (*models.AIResult, error) {
	s.calls++
	return s.result, s.err
}

func newTestEngine(provs []providers.Provider, enricher ai.Enricher) *Engine {
	return New(Options{
		Providers:     provs,
		Enricher:      enricher,
		Cache:         cache.NewMemory(),
		Logger:        zerolog.Nop(),
		SourceTimeout: time.Second,
		AITimeout:     time.Second,
	})
}

func TestAnalyzePerfectMarket(t *testing.T) {
	engine := newTestEngine(perfectProviders(), nil)

	analysis, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisQuick,
	})
	require.NoError(t, err)

	assert.True(t, analysis.Security.Passed)
	assert.Empty(t, analysis.Security.Warnings)
	assert.Equal(t, 95.0, analysis.FinalScore)
	assert.Equal(t, models.DecisionGo, analysis.Decision)
	assert.Equal(t, models.RiskLow, analysis.RiskLevel)
	assert.Equal(t, 5, analysis.Meta.SourcesSucceeded)
	assert.False(t, analysis.Meta.SecurityShortCircuit)
	assert.False(t, analysis.Meta.AIEnhanced)
	assert.NotEmpty(t, analysis.AnalysisID)
	assert.Len(t, analysis.DataSourcesUsed, 5)
}

func TestAnalyzeSecurityShortCircuit(t *testing.T) {
	provs := perfectProviders()
	// GOplus flips to an active mint authority.
	provs[0] = ok(normalize.SourceGoPlus, `{
		"result": {"`+testMint+`": {
			"mintable": {"status": "1"},
			"freezable": {"status": "0"},
			"is_rug_pull": "0"
		}}
	}`)
	enricher := &stubEnricher{result: &models.AIResult{AIScore: 90}}
	engine := newTestEngine(provs, enricher)

	analysis, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisDeep,
	})
	require.NoError(t, err)

	assert.False(t, analysis.Security.Passed)
	assert.True(t, analysis.Meta.SecurityShortCircuit)
	assert.Equal(t, models.DecisionNo, analysis.Decision)
	assert.Equal(t, models.RiskCritical, analysis.RiskLevel)
	assert.Equal(t, 10.0, analysis.FinalScore)
	assert.Empty(t, analysis.Metrics, "metric extraction is skipped on security failure")
	assert.Equal(t, 0, enricher.calls, "AI is never consulted on security failure")
}

func TestAnalyzeDegradedSources(t *testing.T) {
	provs := perfectProviders()
	provs[4] = down(normalize.SourceHelius)
	engine := newTestEngine(provs, nil)

	analysis, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisQuick,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, analysis.Meta.SourcesAttempted)
	assert.Equal(t, 4, analysis.Meta.SourcesSucceeded)

	var completeness *models.MetricResult
	for i := range analysis.Metrics {
		if analysis.Metrics[i].Name == score.MetricCompleteness {
			completeness = &analysis.Metrics[i]
		}
	}
	require.NotNil(t, completeness)
	assert.Equal(t, 8.0, completeness.Points)
}

func TestAnalyzeAllSourcesDownFallback(t *testing.T) {
	provs := []providers.Provider{
		down(normalize.SourceGoPlus),
		down(normalize.SourceRugCheck),
		down(normalize.SourceBirdeye),
	}
	engine := newTestEngine(provs, nil)

	analysis, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisQuick,
	})
	require.NoError(t, err)

	assert.Equal(t, 35.0, analysis.FinalScore)
	assert.Equal(t, models.RiskHigh, analysis.RiskLevel)
	assert.Equal(t, models.DecisionNo, analysis.Decision)
	assert.Equal(t, 0, analysis.Meta.SourcesSucceeded)
	require.NotEmpty(t, analysis.Warnings)
	assert.Contains(t, analysis.Warnings[0], "fallback")
}

func TestAnalyzeDeepBlendsAI(t *testing.T) {
	enricher := &stubEnricher{result: &models.AIResult{AIScore: 90, Recommendation: "BUY"}}
	engine := newTestEngine(perfectProviders(), enricher)

	analysis, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisDeep,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, enricher.calls)
	assert.True(t, analysis.Meta.AIEnhanced)
	require.NotNil(t, analysis.AI)
	// 0.6*95 + 0.4*90 = 93, gap 5 adds the agreement bonus, clipped at 100.
	assert.Equal(t, 100.0, analysis.FinalScore)
	assert.Equal(t, models.DecisionGo, analysis.Decision)
}

func TestAnalyzeAIFailureFallsBackToTraditional(t *testing.T) {
	enricher := &stubEnricher{err: errors.New("model overloaded")}
	engine := newTestEngine(perfectProviders(), enricher)

	analysis, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisDeep,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, enricher.calls)
	assert.False(t, analysis.Meta.AIEnhanced)
	assert.Nil(t, analysis.AI)
	assert.Equal(t, analysis.Composite.TraditionalScore, analysis.FinalScore)
}

func TestAnalyzeQuickSkipsAI(t *testing.T) {
	enricher := &stubEnricher{result: &models.AIResult{AIScore: 90}}
	engine := newTestEngine(perfectProviders(), enricher)

	_, err := engine.Analyze(context.Background(), Request{
		TokenAddress: testMint,
		Type:         models.AnalysisQuick,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, enricher.calls)
}

func TestAnalyzeCacheHit(t *testing.T) {
	engine := newTestEngine(perfectProviders(), nil)
	req := Request{TokenAddress: testMint, Type: models.AnalysisQuick}

	first, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Meta.CacheHit)

	second, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Meta.CacheHit)
	assert.Equal(t, first.AnalysisID, second.AnalysisID)
}

func TestAnalyzeForceBypassesCache(t *testing.T) {
	engine := newTestEngine(perfectProviders(), nil)
	req := Request{TokenAddress: testMint, Type: models.AnalysisQuick}

	first, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)

	req.Force = true
	second, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Meta.CacheHit)
	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)
}

func TestAnalyzeInvalidAddress(t *testing.T) {
	engine := newTestEngine(nil, nil)
	_, err := engine.Analyze(context.Background(), Request{TokenAddress: "not-a-mint"})
	assert.ErrorIs(t, err, models.ErrInvalidAddress)
}

func TestAnalyzeDeterministicScore(t *testing.T) {
	engine := newTestEngine(perfectProviders(), nil)
	req := Request{TokenAddress: testMint, Type: models.AnalysisQuick, Force: true}

	first, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.FinalScore, second.FinalScore)
	assert.Equal(t, first.Composite.Breakdown, second.Composite.Breakdown)
}
