// Package clickhouse provides the ClickHouse-backed quote audit store.
// Every computed quote is appended as one row, giving reporting an
// append-only trail of what was quoted, at what price, and by which
// strategy.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"decoration-cost/decision/pricing"
	"decoration-cost/pkg/platform"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns configuration from the environment with
// development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     platform.GetEnv("CLICKHOUSE_HOST", "localhost"),
		Port:     platform.GetEnvInt("CLICKHOUSE_PORT", 9000),
		Database: platform.GetEnv("CLICKHOUSE_DATABASE", "decoration_cost"),
		Username: platform.GetEnv("CLICKHOUSE_USER", "default"),
		Password: platform.GetEnv("CLICKHOUSE_PASSWORD", ""),
		Debug:    platform.GetEnvBool("CLICKHOUSE_DEBUG", false),
	}
}

// AuditStore implements pricing.QuoteRecorder on ClickHouse.
type AuditStore struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewAuditStore connects to ClickHouse and returns the audit store. A nil
// config falls back to the environment-driven defaults.
func NewAuditStore(cfg *Config) (*AuditStore, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &AuditStore{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *AuditStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *AuditStore) Close() error {
	return s.conn.Close()
}

const auditDDL = `
CREATE TABLE IF NOT EXISTS quote_audit (
    id          UUID,
    product_id  UUID,
    quantity    Int32,
    unit_price  Decimal(12, 4),
    total_price Decimal(12, 2),
    strategy    LowCardinality(String),
    rule_id     Nullable(UUID),
    warnings    Array(String),
    source      LowCardinality(String),
    created_at  DateTime
) ENGINE = MergeTree()
ORDER BY (product_id, created_at)
`

// EnsureSchema creates the audit table when it does not exist yet.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, auditDDL); err != nil {
		return fmt.Errorf("ensure quote_audit schema: %w", err)
	}
	return nil
}

// RecordQuote implements pricing.QuoteRecorder.
func (s *AuditStore) RecordQuote(ctx context.Context, rec pricing.AuditRecord) error {
	query := `
		INSERT INTO quote_audit (
			id, product_id, quantity, unit_price, total_price,
			strategy, rule_id, warnings, source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	warnings := rec.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return s.conn.Exec(ctx, query,
		rec.ID,
		rec.ProductID,
		int32(rec.Quantity),
		rec.UnitPrice,
		rec.TotalPrice,
		rec.Strategy,
		rec.RuleID,
		warnings,
		rec.Source,
		rec.CreatedAt,
	)
}

// QuoteSummary is one row of the recent-quotes report.
type QuoteSummary struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Quantity   int32
	TotalPrice string
	Strategy   string
	CreatedAt  time.Time
}

// RecentQuotes lists the latest audit rows for a product, newest first.
func (s *AuditStore) RecentQuotes(ctx context.Context, productID uuid.UUID, limit int) ([]QuoteSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, product_id, quantity, toString(total_price), strategy, created_at
		FROM quote_audit
		WHERE product_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent quotes: %w", err)
	}
	defer rows.Close()

	var out []QuoteSummary
	for rows.Next() {
		var q QuoteSummary
		if err := rows.Scan(&q.ID, &q.ProductID, &q.Quantity, &q.TotalPrice, &q.Strategy, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote summary: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
