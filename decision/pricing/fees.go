package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"decoration-cost/catalog"
)

// ComposeFees combines a matched unit price with the product's fixed fees
// into an itemized quote. Setup and sample fees always join the total; the
// edit fee appears as an informational line only ("may apply"); the rush fee
// joins the total only when rush service was requested. Every dollar in the
// total has a corresponding breakdown line, and all math is decimal so the
// sum of included lines equals the total exactly.
func ComposeFees(product *catalog.DecorationProduct, unitPrice decimal.Decimal, quantity int, rush bool) *QuoteResult {
	qty := quantity
	totalUnitCost := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	result := &QuoteResult{
		UnitPrice:     unitPrice,
		TotalUnitCost: totalUnitCost,
		Strategy:      StrategyRuleBased,
		CalculatedAt:  time.Now().UTC(),
	}

	result.Breakdown = append(result.Breakdown, BreakdownLine{
		Description: fmt.Sprintf("%d units @ %s", quantity, unitPrice.StringFixed(2)),
		UnitPrice:   &unitPrice,
		Quantity:    &qty,
		TotalPrice:  totalUnitCost,
		Type:        LineUnit,
		Included:    true,
	})

	if product.SetupFee != nil {
		result.Breakdown = append(result.Breakdown, BreakdownLine{
			Description: "Setup fee",
			TotalPrice:  *product.SetupFee,
			Type:        LineSetup,
			Included:    true,
		})
	}
	if product.SampleFee != nil {
		result.Breakdown = append(result.Breakdown, BreakdownLine{
			Description: "Sample fee",
			TotalPrice:  *product.SampleFee,
			Type:        LineSample,
			Included:    true,
		})
	}
	if product.EditFee != nil {
		result.Breakdown = append(result.Breakdown, BreakdownLine{
			Description: "Edit fee (if edits occur)",
			TotalPrice:  *product.EditFee,
			Type:        LineEdit,
			Included:    false,
		})
	}
	if rush && product.RushFee != nil {
		result.Breakdown = append(result.Breakdown, BreakdownLine{
			Description: "Rush service",
			TotalPrice:  *product.RushFee,
			Type:        LineRush,
			Included:    true,
		})
	}

	result.TotalPrice = result.IncludedTotal()
	return result
}
