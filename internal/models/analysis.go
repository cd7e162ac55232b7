package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceStatus reflects the outcome of a single provider fetch.
type SourceStatus string

const (
	SourceOK      SourceStatus = "ok"
	SourceError   SourceStatus = "error"
	SourceTimeout SourceStatus = "timeout"
)

// ServiceResult is the raw outcome of one provider call. Providers never
// return errors past this boundary; failures are encoded in Status.
type ServiceResult struct {
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
	Status    SourceStatus    `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ErrDetail string          `json:"error_detail,omitempty"`
}

// HolderStake is one holder address and its share of supply in percent.
type HolderStake struct {
	Address string  `json:"address"`
	Pct     float64 `json:"pct"`
}

// NormalizedSignal is the per-source intermediate record the scoring engine
// consumes. Every field is optional: nil means the source did not report the
// fact, which is distinct from reporting false or zero.
type NormalizedSignal struct {
	Source string `json:"source"`

	MintAuthorityActive   *bool `json:"mint_authority_active,omitempty"`
	FreezeAuthorityActive *bool `json:"freeze_authority_active,omitempty"`
	Rugged                *bool `json:"rugged,omitempty"`
	MetadataMutable       *bool `json:"metadata_mutable,omitempty"`
	LPLocked              *bool `json:"lp_locked,omitempty"`

	LPProviderCount *int     `json:"lp_provider_count,omitempty"`
	Top10HolderPct  *float64 `json:"top10_holder_pct,omitempty"`
	HolderCount     *int     `json:"holder_count,omitempty"`
	LiquidityUSD    *float64 `json:"liquidity_usd,omitempty"`
	Volume24hUSD    *float64 `json:"volume_24h_usd,omitempty"`

	Holders      []HolderStake `json:"holders,omitempty"`
	PriceSamples []float64     `json:"price_samples,omitempty"`

	TokenName       string `json:"token_name,omitempty"`
	TokenSymbol     string `json:"token_symbol,omitempty"`
	HasFileMetadata *bool  `json:"has_file_metadata,omitempty"`

	// Complete is false when the source failed, timed out, or returned a
	// structurally unusable payload.
	Complete bool `json:"complete"`
}

// SecurityVerdict is the deterministic outcome of the security gate.
type SecurityVerdict struct {
	Passed         bool     `json:"passed"`
	CriticalIssues []string `json:"critical_issues"`
	Warnings       []string `json:"warnings"`
}

// RiskBucket classifies a single metric observation.
type RiskBucket string

const (
	BucketNone     RiskBucket = "none"
	BucketLow      RiskBucket = "low"
	BucketMedium   RiskBucket = "medium"
	BucketHigh     RiskBucket = "high"
	BucketCritical RiskBucket = "critical"
)

// MetricResult is the output of one metric extractor.
type MetricResult struct {
	Name   string     `json:"name"`
	Value  float64    `json:"value"`
	Bucket RiskBucket `json:"risk_bucket"`
	Points float64    `json:"points"`
}

// CompositeScore is the weighted traditional score with its breakdown.
// TraditionalScore is always within [0, 95].
type CompositeScore struct {
	TraditionalScore float64            `json:"traditional_score"`
	Breakdown        map[string]float64 `json:"breakdown"`
}

// AIResult carries the LLM enrichment output. The AI call may fail or time
// out independently of the rest of the pipeline; a nil *AIResult means the
// analysis proceeded on the traditional path only.
type AIResult struct {
	AIScore        float64  `json:"ai_score"`
	RiskAssessment string   `json:"risk_assessment"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	KeyInsights    []string `json:"key_insights"`
	RiskFactors    []string `json:"risk_factors"`
}

// AnalysisType selects the pipeline depth.
type AnalysisType string

const (
	AnalysisQuick AnalysisType = "quick" // security + market only
	AnalysisDeep  AnalysisType = "deep"  // adds AI blending
)

// RiskLevel is the final risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Decision is the terminal GO/WATCH/NO verdict.
type Decision string

const (
	DecisionGo    Decision = "GO"
	DecisionWatch Decision = "WATCH"
	DecisionNo    Decision = "NO"
)

// Verdict maps the blended score and security outcome to actionable labels.
type Verdict struct {
	RiskLevel      RiskLevel `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
	Decision       Decision  `json:"decision"`
}

// AnalysisMeta describes how the analysis was produced.
type AnalysisMeta struct {
	ProcessingTimeMs     int64  `json:"processing_time_ms"`
	SourcesAttempted     int    `json:"sources_attempted"`
	SourcesSucceeded     int    `json:"sources_succeeded"`
	SecurityShortCircuit bool   `json:"security_short_circuit"`
	AIEnhanced           bool   `json:"ai_enhanced"`
	CacheHit             bool   `json:"cache_hit"`
	SourceEvent          string `json:"source_event,omitempty"`
}

// Analysis is the immutable final aggregate for one request. A refresh
// produces a new Analysis that replaces the cache entry wholesale.
type Analysis struct {
	AnalysisID      string          `json:"analysis_id"`
	TokenAddress    string          `json:"token_address"`
	Type            AnalysisType    `json:"analysis_type"`
	Security        SecurityVerdict `json:"security"`
	Composite       CompositeScore  `json:"composite"`
	Metrics         []MetricResult  `json:"metrics,omitempty"`
	AI              *AIResult       `json:"ai,omitempty"`
	FinalScore      float64         `json:"final_score"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	Recommendation  string          `json:"recommendation"`
	Decision        Decision        `json:"verdict_decision"`
	DataSourcesUsed []string        `json:"data_sources_used"`
	Warnings        []string        `json:"warnings"`
	CreatedAt       time.Time       `json:"created_at"`
	Meta            AnalysisMeta    `json:"metadata"`
}

// CacheKey is the deterministic fingerprint used for cache lookup/storage.
func CacheKey(tokenAddress string, typ AnalysisType) string {
	return fmt.Sprintf("%s:%s", tokenAddress, typ)
}
