package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"decoration-cost/catalog"
)

// ComposeLegacy prices a request from the product's flat cost model: per-unit
// cost times quantity, an optional setup line, and one additional-color line
// when more than one color is requested and a per-color cost is configured.
// The first color is part of the base price.
//
// Callers must have checked product.HasLegacyCosts().
func ComposeLegacy(product *catalog.DecorationProduct, quantity int, colorCount *int) *QuoteResult {
	qty := quantity
	unitPrice := *product.PerUnitCost
	totalUnitCost := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	result := &QuoteResult{
		UnitPrice:     unitPrice,
		TotalUnitCost: totalUnitCost,
		Strategy:      StrategyLegacyFlat,
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

	if product.LegacySetupCost != nil {
		result.Breakdown = append(result.Breakdown, BreakdownLine{
			Description: "Setup cost",
			TotalPrice:  *product.LegacySetupCost,
			Type:        LineSetup,
			Included:    true,
		})
	}

	if colorCount != nil && *colorCount > 1 && product.PerColorCost != nil {
		extra := *colorCount - 1
		colorTotal := product.PerColorCost.Mul(decimal.NewFromInt(int64(extra)))
		result.Breakdown = append(result.Breakdown, BreakdownLine{
			Description: fmt.Sprintf("%d additional colors @ %s", extra, product.PerColorCost.StringFixed(2)),
			UnitPrice:   product.PerColorCost,
			Quantity:    &extra,
			TotalPrice:  colorTotal,
			Type:        LineColor,
			Included:    true,
		})
	}

	result.TotalPrice = result.IncludedTotal()
	return result
}
