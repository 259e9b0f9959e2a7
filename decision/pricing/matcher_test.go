package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"decoration-cost/catalog"
)

func record(min int, max *int, price string) catalog.PricingRecord {
	return catalog.PricingRecord{
		ID:          uuid.New(),
		MinQuantity: min,
		MaxQuantity: max,
		UnitPrice:   decimal.RequireFromString(price),
		Active:      true,
	}
}

func intPtr(i int) *int { return &i }

func TestMatcher_QuantityBounds(t *testing.T) {
	records := []catalog.PricingRecord{
		record(6, intPtr(23), "7.19"),
		record(24, intPtr(143), "4.66"),
		record(144, nil, "3.12"),
	}

	cases := []struct {
		qty  int
		want string // "" means no match
	}{
		{5, ""},
		{6, "7.19"},
		{23, "7.19"},
		{24, "4.66"},
		{143, "4.66"},
		{144, "3.12"},
		{10000, "3.12"}, // nil max is unbounded
	}
	for _, tc := range cases {
		got := MatchRule(records, MatchCriteria{Quantity: tc.qty})
		if tc.want == "" {
			if got != nil {
				t.Errorf("qty %d: expected no match, got %s", tc.qty, got.UnitPrice)
			}
			continue
		}
		if got == nil {
			t.Errorf("qty %d: expected match at %s, got none", tc.qty, tc.want)
			continue
		}
		if got.UnitPrice.String() != decimal.RequireFromString(tc.want).String() {
			t.Errorf("qty %d: expected %s, got %s", tc.qty, tc.want, got.UnitPrice)
		}
	}
}

func TestMatcher_WildcardSurvivesUnsuppliedCriterion(t *testing.T) {
	// Record constrains color count; the request does not supply one.
	// An unsupplied criterion must never remove a record.
	r := record(1, nil, "5.00")
	r.ColorCount = intPtr(3)

	got := MatchRule([]catalog.PricingRecord{r}, MatchCriteria{Quantity: 10})
	if got == nil {
		t.Fatal("record with explicit color count should match a request without one")
	}
}

func TestMatcher_ExplicitConflictRemoves(t *testing.T) {
	twoColor := record(1, nil, "5.00")
	twoColor.ColorCount = intPtr(2)
	threeColor := record(1, nil, "6.00")
	threeColor.ColorCount = intPtr(3)

	got := MatchRule([]catalog.PricingRecord{twoColor, threeColor}, MatchCriteria{
		Quantity:   10,
		ColorCount: intPtr(3),
	})
	if got == nil {
		t.Fatal("expected the three-color record to match")
	}
	if got.ID != threeColor.ID {
		t.Errorf("expected three-color record, got unit price %s", got.UnitPrice)
	}
}

func TestMatcher_SpecificityWins(t *testing.T) {
	// A broad wildcard rule overlaps a color-scoped rule for the same
	// quantities; the narrower rule must win even at a higher price.
	broad := record(1, nil, "4.00")
	scoped := record(1, nil, "9.00")
	scoped.ColorCount = intPtr(2)

	got := MatchRule([]catalog.PricingRecord{broad, scoped}, MatchCriteria{
		Quantity:   10,
		ColorCount: intPtr(2),
	})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ID != scoped.ID {
		t.Errorf("expected the color-scoped record to win, got unit price %s", got.UnitPrice)
	}
}

func TestMatcher_MultiDimensionSpecificity(t *testing.T) {
	bucketID := uuid.New()
	artwork := catalog.ArtworkVector

	one := record(1, nil, "5.00")
	one.SizeBucketID = &bucketID

	two := record(1, nil, "7.00")
	two.SizeBucketID = &bucketID
	two.ArtworkType = &artwork

	got := MatchRule([]catalog.PricingRecord{one, two}, MatchCriteria{
		Quantity:     10,
		SizeBucketID: &bucketID,
		ArtworkType:  &artwork,
	})
	if got == nil || got.ID != two.ID {
		t.Fatal("expected the two-dimension record to outrank the one-dimension record")
	}
}

func TestMatcher_TieBreakLowestPrice(t *testing.T) {
	a := record(1, nil, "6.50")
	b := record(1, nil, "5.25")
	c := record(1, nil, "7.00")

	got := MatchRule([]catalog.PricingRecord{a, b, c}, MatchCriteria{Quantity: 10})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ID != b.ID {
		t.Errorf("equal specificity must break to the lowest unit price, got %s", got.UnitPrice)
	}
}

func TestMatcher_TieBreakSourceOrder(t *testing.T) {
	a := record(1, nil, "5.00")
	b := record(1, nil, "5.00")

	got := MatchRule([]catalog.PricingRecord{a, b}, MatchCriteria{Quantity: 10})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ID != a.ID {
		t.Error("identical specificity and price must resolve to the earlier record")
	}
}

func TestMatcher_NoSurvivors(t *testing.T) {
	r := record(6, intPtr(23), "7.19")
	r.ColorCount = intPtr(2)

	got := MatchRule([]catalog.PricingRecord{r}, MatchCriteria{
		Quantity:   10,
		ColorCount: intPtr(5),
	})
	if got != nil {
		t.Errorf("expected no match, got unit price %s", got.UnitPrice)
	}
}
