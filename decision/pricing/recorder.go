package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditRecord is the append-only trace of one computed quote.
type AuditRecord struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Strategy   string
	RuleID     *uuid.UUID
	Warnings   []string
	Source     string // api, cli
	CreatedAt  time.Time
}

// QuoteRecorder persists quote audit records for reporting. Recording is
// best-effort at the call sites: a recorder failure must never fail the
// quote itself.
type QuoteRecorder interface {
	RecordQuote(ctx context.Context, rec AuditRecord) error
}

// NewAuditRecord builds the audit row for a request/result pair.
func NewAuditRecord(req Request, result *QuoteResult, source string) AuditRecord {
	rec := AuditRecord{
		ID:         uuid.New(),
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  result.UnitPrice,
		TotalPrice: result.TotalPrice,
		Strategy:   result.Strategy,
		Source:     source,
		CreatedAt:  result.CalculatedAt,
	}
	if result.Applied != nil {
		id := result.Applied.RecordID
		rec.RuleID = &id
	}
	for _, w := range result.Warnings {
		rec.Warnings = append(rec.Warnings, w.Code)
	}
	return rec
}
