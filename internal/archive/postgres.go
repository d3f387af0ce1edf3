package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/audit"
	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/enrich"
	"github.com/adanbank/signal-sentinel/internal/logger"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS resolved_signals (
	id BIGSERIAL PRIMARY KEY,
	synthetic_id TEXT NOT NULL,
	raw_text TEXT NOT NULL,
	source_type TEXT NOT NULL,
	scenario_category TEXT NOT NULL,
	sentiment_score DOUBLE PRECISION NOT NULL,
	shadow_review_urgency TEXT NOT NULL,
	reasoning_explanation TEXT NOT NULL DEFAULT '',
	reasoning_suggested_action TEXT NOT NULL DEFAULT '',
	resolution TEXT NOT NULL,
	resolved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_resolved_signals_synthetic_id ON resolved_signals (synthetic_id);
`

// Archive persists resolved signals to PostgreSQL. Archiving never blocks
// resolution; callers log failures and move on.
type Archive struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// New connects to PostgreSQL and ensures the schema exists.
func New(cfg config.ArchiveConfig, log *logger.Logger) (*Archive, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	a := &Archive{
		db:     db,
		logger: log.WithComponent("archive"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	a.logger.Info("resolved-signal archive ready",
		zap.String("database", maskDatabaseURL(cfg.DatabaseURL)))
	return a, nil
}

func (a *Archive) initialize(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return nil
}

// InsertResolved archives one resolved signal.
func (a *Archive) InsertResolved(ctx context.Context, signal enrich.ReviewSignal, entry audit.Entry) error {
	const q = `
		INSERT INTO resolved_signals (
			synthetic_id, raw_text, source_type, scenario_category,
			sentiment_score, shadow_review_urgency, reasoning_explanation,
			reasoning_suggested_action, resolution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := a.db.ExecContext(ctx, q,
		signal.SyntheticID,
		signal.RawText,
		signal.SourceType,
		signal.ScenarioCategory,
		signal.SentimentScore,
		signal.ShadowReviewUrgency,
		signal.ReasoningExplanation,
		signal.ReasoningSuggestedAction,
		entry.Action,
	)
	if err != nil {
		return fmt.Errorf("failed to archive resolved signal: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (a *Archive) Close() error {
	return a.db.Close()
}

// maskDatabaseURL hides credentials in a connection string for logging.
func maskDatabaseURL(url string) string {
	if at := strings.Index(url, "@"); at > 0 {
		if scheme := strings.Index(url, "://"); scheme > 0 {
			return url[:scheme+3] + "***" + url[at:]
		}
	}
	return url
}
