package pricing

import (
	"github.com/google/uuid"

	"decoration-cost/catalog"
)

// MatchCriteria carries the request attributes the matcher filters on.
// Quantity is required; nil optional fields mean the caller did not
// constrain that dimension, so records with explicit values there are
// still retained.
type MatchCriteria struct {
	Quantity     int
	SizeBucketID *uuid.UUID
	ColorCount   *int
	ArtworkType  *catalog.ArtworkType
	VariantType  *string
}

// MatchRule selects the single most applicable record from a candidate set
// already scoped to one product (active records only). A record survives
// when the quantity falls in its range and none of its explicit optional
// fields conflict with a supplied criterion; unset record fields are
// wildcards. Among survivors the highest specificity wins. Ties break to
// the lowest unit price, then to source order, so the outcome never depends
// on fetch order. Returns nil when no record applies.
//
// This lets a catalog author define a broad fallback rule alongside narrow
// overrides without manually excluding quantity overlaps: the narrower rule
// always wins.
func MatchRule(records []catalog.PricingRecord, c MatchCriteria) *catalog.PricingRecord {
	var best *catalog.PricingRecord
	for i := range records {
		r := &records[i]
		if !r.ContainsQuantity(c.Quantity) {
			continue
		}
		if conflicts(r, c) {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		switch {
		case r.Specificity() > best.Specificity():
			best = r
		case r.Specificity() == best.Specificity() && r.UnitPrice.LessThan(best.UnitPrice):
			best = r
		}
	}
	return best
}

// conflicts reports whether a record's explicit value contradicts a
// supplied criterion. A criterion the caller did not supply can never
// remove a record.
func conflicts(r *catalog.PricingRecord, c MatchCriteria) bool {
	if c.SizeBucketID != nil && r.SizeBucketID != nil && *r.SizeBucketID != *c.SizeBucketID {
		return true
	}
	if c.ColorCount != nil && r.ColorCount != nil && *r.ColorCount != *c.ColorCount {
		return true
	}
	if c.ArtworkType != nil && r.ArtworkType != nil && *r.ArtworkType != *c.ArtworkType {
		return true
	}
	if c.VariantType != nil && r.VariantType != nil && *r.VariantType != *c.VariantType {
		return true
	}
	return false
}
