// Package postgres persists completed analyses for history queries. Storage
// is best-effort: the pipeline writes asynchronously and tolerates failures.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tokensentry/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_history (
	analysis_id   TEXT PRIMARY KEY,
	token_address TEXT NOT NULL,
	analysis_type TEXT NOT NULL,
	final_score   DOUBLE PRECISION NOT NULL,
	risk_level    TEXT NOT NULL,
	decision      TEXT NOT NULL,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_history_token
	ON analysis_history (token_address, created_at DESC);
`

// HistoryRepo stores and queries completed analyses.
type HistoryRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects to Postgres and ensures the history schema exists.
func Open(dsn string, timeout time.Duration) (*HistoryRepo, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HistoryRepo{db: db, timeout: timeout}, nil
}

// Save inserts one analysis. Duplicate IDs are ignored: analyses are
// immutable, so there is nothing to update.
func (r *HistoryRepo) Save(ctx context.Context, analysis *models.Analysis) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	query := `
		INSERT INTO analysis_history
		(analysis_id, token_address, analysis_type, final_score, risk_level, decision, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (analysis_id) DO NOTHING`

	_, err = r.db.ExecContext(ctx, query,
		analysis.AnalysisID,
		analysis.TokenAddress,
		string(analysis.Type),
		analysis.FinalScore,
		string(analysis.RiskLevel),
		string(analysis.Decision),
		payload,
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Recent returns the latest analyses for a token, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, tokenAddress string, limit int) ([]models.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []struct {
		Payload []byte `db:"payload"`
	}
	query := `
		SELECT payload FROM analysis_history
		WHERE token_address = $1
		ORDER BY created_at DESC
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, tokenAddress, limit); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	analyses := make([]models.Analysis, 0, len(rows))
	for _, row := range rows {
		var a models.Analysis
		if err := json.Unmarshal(row.Payload, &a); err != nil {
			continue
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

// Close releases the database handle.
func (r *HistoryRepo) Close() error { return r.db.Close() }
