package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed IDs for the demo catalog so CLI invocations are reproducible.
var (
	DemoScreenPrintID = uuid.MustParse("6f1c8e1a-0001-4000-8000-000000000001")
	DemoEmbroideryID  = uuid.MustParse("6f1c8e1a-0002-4000-8000-000000000002")
	DemoPatchID       = uuid.MustParse("6f1c8e1a-0003-4000-8000-000000000003")

	demoVendorID   = uuid.MustParse("6f1c8e1a-00f0-4000-8000-0000000000f0")
	demoCategoryID = uuid.MustParse("6f1c8e1a-00f1-4000-8000-0000000000f1")
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(i int) *int { return &i }

func floatp(f float64) *float64 { return &f }

// SeedDemo loads a small but representative catalog: a screen print product
// with color-scoped quantity tiers, an embroidery product with size-bucket
// pricing, and a patch product that only has the legacy flat cost model.
func SeedDemo(s *MemoryStore) {
	now := time.Now().UTC()

	// Screen print: quantity tiers split by color count, plus fixed fees.
	s.PutProduct(DecorationProduct{
		ID:          DemoScreenPrintID,
		Name:        "Screen Print (vector artwork)",
		CategoryID:  demoCategoryID,
		VendorID:    demoVendorID,
		MinQuantity: 6,
		SetupFee:    dec("30.00"),
		SampleFee:   dec("15.00"),
		EditFee:     dec("10.00"),
		RushFee:     dec("25.00"),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	spRecords := []struct {
		min, max int
		price    string
		colors   int
	}{
		{6, 23, "7.19", 1},
		{6, 23, "13.03", 2},
		{6, 23, "17.42", 3},
		{24, 143, "4.66", 1},
		{24, 143, "6.08", 2},
		{24, 143, "7.55", 3},
	}
	for i, r := range spRecords {
		s.PutPricingRecord(PricingRecord{
			ID:          uuid.New(),
			ProductID:   DemoScreenPrintID,
			MinQuantity: r.min,
			MaxQuantity: intp(r.max),
			UnitPrice:   decimal.RequireFromString(r.price),
			ColorCount:  intp(r.colors),
			Active:      true,
			CreatedAt:   now.Add(time.Duration(i) * time.Second),
		})
	}
	// Broad fallback for quantities past the last tier.
	s.PutPricingRecord(PricingRecord{
		ID:          uuid.New(),
		ProductID:   DemoScreenPrintID,
		MinQuantity: 144,
		UnitPrice:   decimal.RequireFromString("3.12"),
		Active:      true,
		CreatedAt:   now,
	})

	// Embroidery: priced by stitched size, classified on average dimension.
	s.PutProduct(DecorationProduct{
		ID:          DemoEmbroideryID,
		Name:        "Embroidery (left chest)",
		CategoryID:  demoCategoryID,
		VendorID:    demoVendorID,
		MinQuantity: 12,
		SetupFee:    dec("45.00"),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	smallBucket := SizeBucket{
		ID:        uuid.New(),
		ProductID: DemoEmbroideryID,
		Name:      `Up to 2.50"`,
		Method:    SizeMethodAverage,
		MaxValue:  floatp(2.50),
		Position:  0,
		CreatedAt: now,
	}
	largeBucket := SizeBucket{
		ID:        uuid.New(),
		ProductID: DemoEmbroideryID,
		Name:      `2.51" to 4.00"`,
		Method:    SizeMethodAverage,
		MinValue:  floatp(2.51),
		MaxValue:  floatp(4.00),
		Position:  1,
		CreatedAt: now,
	}
	s.PutSizeBucket(smallBucket)
	s.PutSizeBucket(largeBucket)
	for i, r := range []struct {
		bucket uuid.UUID
		price  string
	}{
		{smallBucket.ID, "5.85"},
		{largeBucket.ID, "8.40"},
	} {
		r := r // per-iteration copy; &r.bucket must not alias across iterations
		s.PutPricingRecord(PricingRecord{
			ID:           uuid.New(),
			ProductID:    DemoEmbroideryID,
			MinQuantity:  12,
			UnitPrice:    decimal.RequireFromString(r.price),
			SizeBucketID: &r.bucket,
			Active:       true,
			CreatedAt:    now.Add(time.Duration(i) * time.Second),
		})
	}

	// Patch: no structured records, legacy flat cost model only.
	s.PutProduct(DecorationProduct{
		ID:              DemoPatchID,
		Name:            "Woven Patch",
		CategoryID:      demoCategoryID,
		VendorID:        demoVendorID,
		MinQuantity:     10,
		PerUnitCost:     dec("2.50"),
		PerColorCost:    dec("1.00"),
		LegacySetupCost: dec("20.00"),
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}
