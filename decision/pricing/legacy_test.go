package pricing

import (
	"testing"

	"decoration-cost/catalog"
)

func legacyProduct() *catalog.DecorationProduct {
	return &catalog.DecorationProduct{
		Name:            "Woven Patch",
		PerUnitCost:     decPtr("2.50"),
		PerColorCost:    decPtr("1.00"),
		LegacySetupCost: decPtr("20.00"),
		Active:          true,
	}
}

func TestComposeLegacy_WithColors(t *testing.T) {
	colors := 2
	result := ComposeLegacy(legacyProduct(), 10, &colors)

	// 2.50*10 + 20.00 setup + (2-1)*1.00; the first color is part of the
	// base price.
	if got := result.TotalPrice.StringFixed(2); got != "46.00" {
		t.Errorf("expected total 46.00, got %s", got)
	}
	colorLine := result.FeeTotal(LineColor)
	if colorLine == nil || colorLine.StringFixed(2) != "1.00" {
		t.Errorf("expected additional-color line of 1.00, got %v", colorLine)
	}
	if result.Strategy != StrategyLegacyFlat {
		t.Errorf("expected strategy %q, got %q", StrategyLegacyFlat, result.Strategy)
	}
}

func TestComposeLegacy_NoSetupCost(t *testing.T) {
	p := legacyProduct()
	p.LegacySetupCost = nil
	colors := 3
	result := ComposeLegacy(p, 10, &colors)

	// 2.50*10 plus two additional colors at 1.00 flat.
	if got := result.TotalPrice.StringFixed(2); got != "27.00" {
		t.Errorf("expected total 27.00, got %s", got)
	}
	if result.FeeTotal(LineSetup) != nil {
		t.Error("no setup line expected when LegacySetupCost is nil")
	}
}

func TestComposeLegacy_SingleColorHasNoColorLine(t *testing.T) {
	one := 1
	result := ComposeLegacy(legacyProduct(), 10, &one)
	if result.FeeTotal(LineColor) != nil {
		t.Error("single-color order must not carry an additional-color line")
	}

	result = ComposeLegacy(legacyProduct(), 10, nil)
	if result.FeeTotal(LineColor) != nil {
		t.Error("order without a color count must not carry an additional-color line")
	}
}

func TestComposeLegacy_NoPerColorCost(t *testing.T) {
	p := legacyProduct()
	p.PerColorCost = nil
	colors := 3
	result := ComposeLegacy(p, 10, &colors)
	if result.FeeTotal(LineColor) != nil {
		t.Error("no additional-color line expected when PerColorCost is nil")
	}
}
