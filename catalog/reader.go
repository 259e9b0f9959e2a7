package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Reader is the catalog collaborator the pricing engine depends on. All
// methods are read-only; implementations must be safe for concurrent use.
type Reader interface {
	// GetDecorationProduct returns the product, or (nil, nil) when no
	// product with that ID exists. A non-nil error means the backend
	// failed, not that the product is absent.
	GetDecorationProduct(ctx context.Context, id uuid.UUID) (*DecorationProduct, error)

	// GetPricingRecords returns the active pricing records for a product,
	// in a stable source order.
	GetPricingRecords(ctx context.Context, productID uuid.UUID) ([]PricingRecord, error)

	// GetSizeBuckets returns the product's size buckets ordered by
	// position.
	GetSizeBuckets(ctx context.Context, productID uuid.UUID) ([]SizeBucket, error)
}
