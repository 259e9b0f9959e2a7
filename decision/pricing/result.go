// Package pricing implements the decoration pricing resolution engine: it
// classifies physical size, selects the single most applicable price rule
// from overlapping multi-dimensional records, and composes the matched unit
// price with fixed fees into an itemized quote.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"decoration-cost/catalog"
)

// Request is the ephemeral input for one calculation. Optional fields are
// pointers; nil means the caller did not constrain that dimension.
type Request struct {
	ProductID   uuid.UUID
	Quantity    int
	Width       *float64
	Height      *float64
	ColorCount  *int
	ArtworkType *catalog.ArtworkType
	VariantType *string
	RushService bool
}

// LineType classifies a breakdown line.
type LineType string

const (
	LineUnit   LineType = "UNIT"
	LineSetup  LineType = "SETUP"
	LineSample LineType = "SAMPLE"
	LineEdit   LineType = "EDIT"
	LineRush   LineType = "RUSH"
	LineColor  LineType = "COLOR"
)

// BreakdownLine is one itemized component of a quote. Included reports
// whether the line contributes to the quote total; the edit fee, for
// example, is shown but never totaled.
type BreakdownLine struct {
	Description string           `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	Type        LineType         `json:"type"`
	Included    bool             `json:"included"`
}

// AppliedRule describes the pricing record a quote was resolved against.
type AppliedRule struct {
	RecordID    uuid.UUID            `json:"record_id"`
	MinQuantity int                  `json:"min_quantity"`
	MaxQuantity *int                 `json:"max_quantity,omitempty"`
	SizeRange   *string              `json:"size_range,omitempty"`
	ColorCount  *int                 `json:"color_count,omitempty"`
	ArtworkType *catalog.ArtworkType `json:"artwork_type,omitempty"`
	VariantType *string              `json:"variant_type,omitempty"`
	Specificity int                  `json:"specificity"`
}

// Warning is a non-fatal condition attached to a still-computed quote.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Strategy names, reported on the result for audit purposes.
const (
	StrategyRuleBased  = "rule_based"
	StrategyLegacyFlat = "legacy_flat"
)

// QuoteResult is the output of one calculation. Invariant: TotalPrice equals
// the sum of every breakdown line with Included == true.
type QuoteResult struct {
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalUnitCost decimal.Decimal `json:"total_unit_cost"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Breakdown     []BreakdownLine `json:"breakdown"`
	Applied       *AppliedRule    `json:"applied_pricing,omitempty"`
	Warnings      []Warning       `json:"warnings,omitempty"`
	Strategy      string          `json:"strategy"`
	CalculatedAt  time.Time       `json:"calculated_at"`
}

// IncludedTotal sums the breakdown lines that participate in the total.
// Exposed so callers and tests can verify the totaling invariant.
func (r *QuoteResult) IncludedTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range r.Breakdown {
		if line.Included {
			sum = sum.Add(line.TotalPrice)
		}
	}
	return sum
}

// FeeTotal returns the included line total for a given type, or nil when no
// such line exists. Convenience for building wire responses.
func (r *QuoteResult) FeeTotal(t LineType) *decimal.Decimal {
	for _, line := range r.Breakdown {
		if line.Type == t {
			v := line.TotalPrice
			return &v
		}
	}
	return nil
}
