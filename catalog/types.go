// Package catalog holds the decoration catalog data model and the read
// interface the pricing engine consumes. Products, pricing records and size
// buckets are long-lived catalog data owned by the admin surface; the engine
// only ever reads them.
package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArtworkType classifies the artwork supplied with an order.
type ArtworkType string

const (
	ArtworkEasyPrints ArtworkType = "EASY_PRINTS"
	ArtworkVector     ArtworkType = "VECTOR"
	ArtworkNonVector  ArtworkType = "NON_VECTOR"
)

// ParseArtworkType validates a wire-level artwork type string.
func ParseArtworkType(s string) (ArtworkType, error) {
	switch ArtworkType(s) {
	case ArtworkEasyPrints, ArtworkVector, ArtworkNonVector:
		return ArtworkType(s), nil
	default:
		return "", fmt.Errorf("unknown artwork type: %q", s)
	}
}

// SizeMethod selects the formula that reduces width/height to one scalar.
type SizeMethod string

const (
	SizeMethodAverage      SizeMethod = "AVERAGE"       // (w+h)/2
	SizeMethodArea         SizeMethod = "AREA"          // w*h
	SizeMethodMaxDimension SizeMethod = "MAX_DIMENSION" // max(w,h)
)

// ParseSizeMethod validates a wire-level size method string.
func ParseSizeMethod(s string) (SizeMethod, error) {
	switch SizeMethod(s) {
	case SizeMethodAverage, SizeMethodArea, SizeMethodMaxDimension:
		return SizeMethod(s), nil
	default:
		return "", fmt.Errorf("unknown size method: %q", s)
	}
}

// DecorationProduct is a sellable decoration offering (screen print,
// embroidery, patch, ...) tied to a vendor and category.
type DecorationProduct struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"category_id"`
	VendorID   uuid.UUID `json:"vendor_id"`

	MinQuantity int `json:"min_quantity"`

	// Fixed fees. Nil means the product does not carry that fee.
	SetupFee  *decimal.Decimal `json:"setup_fee,omitempty"`
	SampleFee *decimal.Decimal `json:"sample_fee,omitempty"`
	EditFee   *decimal.Decimal `json:"edit_fee,omitempty"`
	RushFee   *decimal.Decimal `json:"rush_fee,omitempty"`

	// Legacy flat cost model, used only when no structured pricing
	// records exist for the product.
	PerUnitCost     *decimal.Decimal `json:"per_unit_cost,omitempty"`
	PerColorCost    *decimal.Decimal `json:"per_color_cost,omitempty"`
	LegacySetupCost *decimal.Decimal `json:"legacy_setup_cost,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLegacyCosts reports whether the product carries a usable flat cost model.
func (p *DecorationProduct) HasLegacyCosts() bool {
	return p.PerUnitCost != nil
}

// PricingRecord is one quantity-and-attribute-scoped price rule belonging to
// exactly one DecorationProduct. Each nil optional field is a wildcard: the
// rule applies for any value of that dimension. Overlapping records for the
// same quantity are expected and resolved by specificity, not treated as a
// data error.
type PricingRecord struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`

	MinQuantity int  `json:"min_quantity"`           // inclusive
	MaxQuantity *int `json:"max_quantity,omitempty"` // inclusive, nil = unbounded

	UnitPrice decimal.Decimal `json:"unit_price"`

	SizeBucketID *uuid.UUID   `json:"size_bucket_id,omitempty"`
	ColorCount   *int         `json:"color_count,omitempty"`
	ArtworkType  *ArtworkType `json:"artwork_type,omitempty"`
	VariantType  *string      `json:"variant_type,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ContainsQuantity reports whether q falls inside [MinQuantity, MaxQuantity].
func (r *PricingRecord) ContainsQuantity(q int) bool {
	if q < r.MinQuantity {
		return false
	}
	return r.MaxQuantity == nil || q <= *r.MaxQuantity
}

// Specificity is the count of optional match dimensions the record
// constrains (0-4). Used to rank otherwise-applicable rules.
func (r *PricingRecord) Specificity() int {
	score := 0
	if r.SizeBucketID != nil {
		score++
	}
	if r.ColorCount != nil {
		score++
	}
	if r.ArtworkType != nil {
		score++
	}
	if r.VariantType != nil {
		score++
	}
	return score
}

// SizeBucket is a named range of a computed physical-size scalar used to
// scope size-dependent pricing. Bounds on the computed value default to
// [0, +inf) when nil.
type SizeBucket struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	Name      string     `json:"name"`
	Method    SizeMethod `json:"method"`
	MinValue  *float64   `json:"min_value,omitempty"`
	MaxValue  *float64   `json:"max_value,omitempty"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
}

// Scalar reduces the given dimensions per the bucket's method.
func (b *SizeBucket) Scalar(width, height float64) float64 {
	switch b.Method {
	case SizeMethodArea:
		return width * height
	case SizeMethodMaxDimension:
		if width > height {
			return width
		}
		return height
	default: // AVERAGE
		return (width + height) / 2
	}
}

// Contains reports whether the computed scalar falls inside the bucket's
// bounds. Lower bound defaults to 0, upper bound to +inf.
func (b *SizeBucket) Contains(scalar float64) bool {
	lower := 0.0
	if b.MinValue != nil {
		lower = *b.MinValue
	}
	if scalar < lower {
		return false
	}
	return b.MaxValue == nil || scalar <= *b.MaxValue
}
