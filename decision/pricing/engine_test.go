package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"decoration-cost/catalog"
	domainerrors "decoration-cost/pkg/errors"
)

// fakeCatalog is a hand-rolled Reader serving one product.
type fakeCatalog struct {
	product *catalog.DecorationProduct
	records []catalog.PricingRecord
	buckets []catalog.SizeBucket
	err     error
}

func (f *fakeCatalog) GetDecorationProduct(ctx context.Context, id uuid.UUID) (*catalog.DecorationProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.product == nil || f.product.ID != id {
		return nil, nil
	}
	return f.product, nil
}

func (f *fakeCatalog) GetPricingRecords(ctx context.Context, productID uuid.UUID) ([]catalog.PricingRecord, error) {
	return f.records, nil
}

func (f *fakeCatalog) GetSizeBuckets(ctx context.Context, productID uuid.UUID) ([]catalog.SizeBucket, error) {
	return f.buckets, nil
}

func screenPrintCatalog() (*fakeCatalog, uuid.UUID) {
	productID := uuid.New()
	product := &catalog.DecorationProduct{
		ID:          productID,
		Name:        "Screen Print",
		MinQuantity: 6,
		SetupFee:    decPtr("30.00"),
		SampleFee:   decPtr("15.00"),
		EditFee:     decPtr("10.00"),
		RushFee:     decPtr("25.00"),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	tiers := []struct {
		min, max int
		price    string
		colors   int
	}{
		{6, 23, "7.19", 1},
		{6, 23, "13.03", 2},
		{24, 143, "4.66", 1},
	}
	var records []catalog.PricingRecord
	for _, tier := range tiers {
		records = append(records, catalog.PricingRecord{
			ID:          uuid.New(),
			ProductID:   productID,
			MinQuantity: tier.min,
			MaxQuantity: intPtr(tier.max),
			UnitPrice:   decimal.RequireFromString(tier.price),
			ColorCount:  intPtr(tier.colors),
			Active:      true,
		})
	}
	return &fakeCatalog{product: product, records: records}, productID
}

func domainErr(t *testing.T, err error) *domainerrors.DomainError {
	t.Helper()
	var de *domainerrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected a *DomainError, got %T: %v", err, err)
	}
	return de
}

func TestEngine_RuleBasedQuote(t *testing.T) {
	store, productID := screenPrintCatalog()
	engine := NewEngine(store)

	colors := 2
	result, err := engine.Calculate(context.Background(), Request{
		ProductID:  productID,
		Quantity:   10,
		ColorCount: &colors,
	})
	if err != nil {
		t.Fatalf("expected a quote, got %v", err)
	}

	// 13.03 * 10 + 30.00 + 15.00 = 175.30
	if got := result.TotalPrice.StringFixed(2); got != "175.30" {
		t.Errorf("expected total 175.30, got %s", got)
	}
	if got := result.TotalUnitCost.StringFixed(2); got != "130.30" {
		t.Errorf("expected unit cost 130.30, got %s", got)
	}
	if result.Strategy != StrategyRuleBased {
		t.Errorf("expected strategy %q, got %q", StrategyRuleBased, result.Strategy)
	}
	if result.Applied == nil {
		t.Fatal("expected the applied rule on the result")
	}
	if result.Applied.ColorCount == nil || *result.Applied.ColorCount != 2 {
		t.Error("expected the two-color record to apply")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestEngine_BelowMinimumStillQuotes(t *testing.T) {
	store, productID := screenPrintCatalog()
	engine := NewEngine(store)

	colors := 1
	result, err := engine.Calculate(context.Background(), Request{
		ProductID:  productID,
		Quantity:   6,
		ColorCount: &colors,
	})
	if err != nil {
		t.Fatalf("expected a quote at the minimum, got %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("quantity at the minimum must not warn: %v", result.Warnings)
	}

	// Below the minimum the quote still computes, with a warning attached.
	store.records[0].MinQuantity = 1
	result, err = engine.Calculate(context.Background(), Request{
		ProductID:  productID,
		Quantity:   3,
		ColorCount: &colors,
	})
	if err != nil {
		t.Fatalf("below-minimum quantity must still quote, got %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", result.Warnings)
	}
	if result.Warnings[0].Code != domainerrors.ErrCodeBelowMinimumQuantity {
		t.Errorf("expected %s, got %s", domainerrors.ErrCodeBelowMinimumQuantity, result.Warnings[0].Code)
	}
}

func TestEngine_SizeBucketSelection(t *testing.T) {
	productID := uuid.New()
	small := catalog.SizeBucket{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      `Up to 2.50"`,
		Method:    catalog.SizeMethodAverage,
		MaxValue:  floatPtr(2.50),
	}
	large := catalog.SizeBucket{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      `2.51" to 4.00"`,
		Method:    catalog.SizeMethodAverage,
		MinValue:  floatPtr(2.51),
		MaxValue:  floatPtr(4.00),
		Position:  1,
	}
	store := &fakeCatalog{
		product: &catalog.DecorationProduct{
			ID:          productID,
			Name:        "Embroidery",
			MinQuantity: 1,
			Active:      true,
		},
		buckets: []catalog.SizeBucket{small, large},
		records: []catalog.PricingRecord{
			{ID: uuid.New(), ProductID: productID, MinQuantity: 1, UnitPrice: decimal.RequireFromString("5.85"), SizeBucketID: &small.ID, Active: true},
			{ID: uuid.New(), ProductID: productID, MinQuantity: 1, UnitPrice: decimal.RequireFromString("8.40"), SizeBucketID: &large.ID, Active: true},
		},
	}
	engine := NewEngine(store)

	result, err := engine.Calculate(context.Background(), Request{
		ProductID: productID,
		Quantity:  12,
		Width:     floatPtr(2),
		Height:    floatPtr(3),
	})
	if err != nil {
		t.Fatalf("expected a quote, got %v", err)
	}
	if got := result.UnitPrice.StringFixed(2); got != "5.85" {
		t.Errorf("2x3 averages to 2.50 and must price in the small bucket, got %s", got)
	}
	if result.Applied == nil || result.Applied.SizeRange == nil || *result.Applied.SizeRange != small.Name {
		t.Errorf("expected the applied size range %q, got %v", small.Name, result.Applied)
	}
}

func TestEngine_UnclassifiedSizeNarrowsToSizeAgnosticRecords(t *testing.T) {
	productID := uuid.New()
	small := catalog.SizeBucket{
		ID:        uuid.New(),
		ProductID: productID,
		Name:      "small",
		Method:    catalog.SizeMethodAverage,
		MaxValue:  floatPtr(2.50),
	}
	store := &fakeCatalog{
		product: &catalog.DecorationProduct{
			ID:          productID,
			Name:        "Embroidery",
			MinQuantity: 1,
			Active:      true,
		},
		buckets: []catalog.SizeBucket{small},
		records: []catalog.PricingRecord{
			{ID: uuid.New(), ProductID: productID, MinQuantity: 1, UnitPrice: decimal.RequireFromString("5.85"), SizeBucketID: &small.ID, Active: true},
			{ID: uuid.New(), ProductID: productID, MinQuantity: 1, UnitPrice: decimal.RequireFromString("7.00"), Active: true},
		},
	}
	engine := NewEngine(store)

	// 9x9 falls outside every bucket; only the size-agnostic record remains.
	result, err := engine.Calculate(context.Background(), Request{
		ProductID: productID,
		Quantity:  12,
		Width:     floatPtr(9),
		Height:    floatPtr(9),
	})
	if err != nil {
		t.Fatalf("expected the size-agnostic record to price, got %v", err)
	}
	if got := result.UnitPrice.StringFixed(2); got != "7.00" {
		t.Errorf("expected the size-agnostic unit price 7.00, got %s", got)
	}

	// With only size-scoped records, the same request has nothing to match.
	store.records = store.records[:1]
	_, err = engine.Calculate(context.Background(), Request{
		ProductID: productID,
		Quantity:  12,
		Width:     floatPtr(9),
		Height:    floatPtr(9),
	})
	de := domainErr(t, err)
	if de.Code != domainerrors.ErrCodeNoApplicablePricing {
		t.Errorf("expected %s, got %s", domainerrors.ErrCodeNoApplicablePricing, de.Code)
	}
}

func TestEngine_ProductNotFound(t *testing.T) {
	engine := NewEngine(&fakeCatalog{})
	_, err := engine.Calculate(context.Background(), Request{ProductID: uuid.New(), Quantity: 10})
	de := domainErr(t, err)
	if de.Code != domainerrors.ErrCodeProductNotFound {
		t.Errorf("expected %s, got %s", domainerrors.ErrCodeProductNotFound, de.Code)
	}
}

func TestEngine_InactiveProductNotFound(t *testing.T) {
	store, productID := screenPrintCatalog()
	store.product.Active = false
	engine := NewEngine(store)

	_, err := engine.Calculate(context.Background(), Request{ProductID: productID, Quantity: 10})
	de := domainErr(t, err)
	if de.Code != domainerrors.ErrCodeProductNotFound {
		t.Errorf("inactive product must report %s, got %s", domainerrors.ErrCodeProductNotFound, de.Code)
	}
}

func TestEngine_InvalidQuantity(t *testing.T) {
	store, productID := screenPrintCatalog()
	engine := NewEngine(store)

	for _, qty := range []int{0, -5} {
		_, err := engine.Calculate(context.Background(), Request{ProductID: productID, Quantity: qty})
		de := domainErr(t, err)
		if de.Code != domainerrors.ErrCodeInvalidRequest {
			t.Errorf("qty %d: expected %s, got %s", qty, domainerrors.ErrCodeInvalidRequest, de.Code)
		}
	}
}

func TestEngine_InvalidDimensions(t *testing.T) {
	store, productID := screenPrintCatalog()
	engine := NewEngine(store)

	cases := []struct {
		name          string
		width, height *float64
	}{
		{"width only", floatPtr(2), nil},
		{"height only", nil, floatPtr(3)},
		{"zero width", floatPtr(0), floatPtr(3)},
		{"negative height", floatPtr(2), floatPtr(-1)},
	}
	for _, tc := range cases {
		_, err := engine.Calculate(context.Background(), Request{
			ProductID: productID,
			Quantity:  10,
			Width:     tc.width,
			Height:    tc.height,
		})
		de := domainErr(t, err)
		if de.Code != domainerrors.ErrCodeInvalidDimensions {
			t.Errorf("%s: expected %s, got %s", tc.name, domainerrors.ErrCodeInvalidDimensions, de.Code)
		}
	}
}

func TestEngine_LegacyFallbackWhenNoRecords(t *testing.T) {
	productID := uuid.New()
	store := &fakeCatalog{
		product: &catalog.DecorationProduct{
			ID:              productID,
			Name:            "Woven Patch",
			MinQuantity:     10,
			PerUnitCost:     decPtr("2.50"),
			PerColorCost:    decPtr("1.00"),
			LegacySetupCost: decPtr("20.00"),
			Active:          true,
		},
	}
	engine := NewEngine(store)

	colors := 2
	result, err := engine.Calculate(context.Background(), Request{
		ProductID:  productID,
		Quantity:   10,
		ColorCount: &colors,
	})
	if err != nil {
		t.Fatalf("expected a legacy quote, got %v", err)
	}
	if result.Strategy != StrategyLegacyFlat {
		t.Errorf("expected strategy %q, got %q", StrategyLegacyFlat, result.Strategy)
	}
	// 2.50*10 + 20.00 + 1.00 = 46.00
	if got := result.TotalPrice.StringFixed(2); got != "46.00" {
		t.Errorf("expected total 46.00, got %s", got)
	}
	if result.Applied != nil {
		t.Error("legacy quotes carry no applied rule")
	}
}

func TestEngine_LegacyFallbackWhenNoRuleMatches(t *testing.T) {
	// Records exist but none covers the requested quantity; the engine
	// falls through to the flat cost model rather than failing.
	store, productID := screenPrintCatalog()
	store.product.PerUnitCost = decPtr("9.99")
	engine := NewEngine(store)

	result, err := engine.Calculate(context.Background(), Request{
		ProductID: productID,
		Quantity:  500,
	})
	if err != nil {
		t.Fatalf("expected a legacy fallback quote, got %v", err)
	}
	if result.Strategy != StrategyLegacyFlat {
		t.Errorf("expected strategy %q, got %q", StrategyLegacyFlat, result.Strategy)
	}
}

func TestEngine_NoApplicablePricing(t *testing.T) {
	// No record covers the quantity and no legacy model exists.
	store, productID := screenPrintCatalog()
	engine := NewEngine(store)

	_, err := engine.Calculate(context.Background(), Request{ProductID: productID, Quantity: 500})
	de := domainErr(t, err)
	if de.Code != domainerrors.ErrCodeNoApplicablePricing {
		t.Errorf("expected %s, got %s", domainerrors.ErrCodeNoApplicablePricing, de.Code)
	}
}

func TestEngine_StorageFailure(t *testing.T) {
	engine := NewEngine(&fakeCatalog{err: errors.New("connection refused")})
	_, err := engine.Calculate(context.Background(), Request{ProductID: uuid.New(), Quantity: 10})
	de := domainErr(t, err)
	if de.Code != domainerrors.ErrCodeStorageFailure {
		t.Errorf("expected %s, got %s", domainerrors.ErrCodeStorageFailure, de.Code)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	store, productID := screenPrintCatalog()
	engine := NewEngine(store)

	colors := 2
	req := Request{ProductID: productID, Quantity: 10, ColorCount: &colors}

	first, err := engine.Calculate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Calculate(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if !again.TotalPrice.Equal(first.TotalPrice) || again.Applied.RecordID != first.Applied.RecordID {
			t.Fatalf("run %d resolved differently: %s vs %s", i, again.TotalPrice, first.TotalPrice)
		}
	}
}
