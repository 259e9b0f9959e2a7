package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory catalog backend. It serves as the test double
// for the Reader interface and backs the CLI demo catalog.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]DecorationProduct
	records  map[uuid.UUID][]PricingRecord // productID -> records, insert order
	buckets  map[uuid.UUID][]SizeBucket    // productID -> buckets
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[uuid.UUID]DecorationProduct),
		records:  make(map[uuid.UUID][]PricingRecord),
		buckets:  make(map[uuid.UUID][]SizeBucket),
	}
}

// PutProduct inserts or replaces a product.
func (s *MemoryStore) PutProduct(p DecorationProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutPricingRecord appends a pricing record, replacing any record with the
// same ID in place so source order stays stable.
func (s *MemoryStore) PutPricingRecord(r PricingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.records[r.ProductID]
	for i := range existing {
		if existing[i].ID == r.ID {
			existing[i] = r
			return
		}
	}
	s.records[r.ProductID] = append(existing, r)
}

// PutSizeBucket appends or replaces a size bucket for a product.
func (s *MemoryStore) PutSizeBucket(b SizeBucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.buckets[b.ProductID]
	for i := range existing {
		if existing[i].ID == b.ID {
			existing[i] = b
			return
		}
	}
	s.buckets[b.ProductID] = append(existing, b)
}

// ListProducts returns all products sorted by name, for the admin surface.
func (s *MemoryStore) ListProducts(ctx context.Context) ([]DecorationProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DecorationProduct, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetDecorationProduct implements Reader.
func (s *MemoryStore) GetDecorationProduct(ctx context.Context, id uuid.UUID) (*DecorationProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

// GetPricingRecords implements Reader. Only active records are returned,
// in insert order.
func (s *MemoryStore) GetPricingRecords(ctx context.Context, productID uuid.UUID) ([]PricingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PricingRecord
	for _, r := range s.records[productID] {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetSizeBuckets implements Reader. Buckets come back ordered by position.
func (s *MemoryStore) GetSizeBuckets(ctx context.Context, productID uuid.UUID) ([]SizeBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SizeBucket, len(s.buckets[productID]))
	copy(out, s.buckets[productID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}
