package pricing

import "decoration-cost/catalog"

// ClassifySize maps a width/height pair to the first size bucket whose
// bounds contain the scalar computed by that bucket's own method. Buckets
// with different methods over the same dimensions can legitimately yield
// different assignments; selection is purely a function of the configured
// method. A nil return means no bucket matched, which is not an error: it
// narrows the rule search to size-agnostic records.
//
// Dimensions must already be validated (> 0) by the caller.
func ClassifySize(width, height float64, buckets []catalog.SizeBucket) *catalog.SizeBucket {
	for i := range buckets {
		b := &buckets[i]
		if b.Contains(b.Scalar(width, height)) {
			return b
		}
	}
	return nil
}
