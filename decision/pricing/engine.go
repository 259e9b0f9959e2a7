package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"decoration-cost/catalog"
	domainerrors "decoration-cost/pkg/errors"
)

// ErrNoApplicableRule is reported by the rule-based strategy when the
// candidate set holds no record for the request. The engine treats it as a
// signal to fall back, not as a final failure.
var ErrNoApplicableRule = errors.New("no applicable pricing rule")

// Strategy prices a validated request against one product. Two variants
// exist: rule-based pricing over structured records, and the legacy flat
// cost model used when no records apply.
type Strategy interface {
	Name() string
	Quote(product *catalog.DecorationProduct, req Request, bucket *catalog.SizeBucket) (*QuoteResult, error)
}

// ruleBasedPricing resolves a single best record and composes it with fees.
type ruleBasedPricing struct {
	records []catalog.PricingRecord
	buckets []catalog.SizeBucket
}

func (s *ruleBasedPricing) Name() string { return StrategyRuleBased }

func (s *ruleBasedPricing) Quote(product *catalog.DecorationProduct, req Request, bucket *catalog.SizeBucket) (*QuoteResult, error) {
	criteria := MatchCriteria{
		Quantity:    req.Quantity,
		ColorCount:  req.ColorCount,
		ArtworkType: req.ArtworkType,
		VariantType: req.VariantType,
	}
	records := s.records
	if bucket != nil {
		criteria.SizeBucketID = &bucket.ID
	} else if req.Width != nil && req.Height != nil {
		// Dimensions were supplied but no bucket contains them: the
		// search narrows to size-agnostic records.
		narrowed := make([]catalog.PricingRecord, 0, len(records))
		for _, r := range records {
			if r.SizeBucketID == nil {
				narrowed = append(narrowed, r)
			}
		}
		records = narrowed
	}

	matched := MatchRule(records, criteria)
	if matched == nil {
		return nil, ErrNoApplicableRule
	}

	result := ComposeFees(product, matched.UnitPrice, req.Quantity, req.RushService)
	result.Applied = &AppliedRule{
		RecordID:    matched.ID,
		MinQuantity: matched.MinQuantity,
		MaxQuantity: matched.MaxQuantity,
		ColorCount:  matched.ColorCount,
		ArtworkType: matched.ArtworkType,
		VariantType: matched.VariantType,
		Specificity: matched.Specificity(),
	}
	if matched.SizeBucketID != nil {
		for i := range s.buckets {
			if s.buckets[i].ID == *matched.SizeBucketID {
				result.Applied.SizeRange = &s.buckets[i].Name
				break
			}
		}
	}
	return result, nil
}

// legacyFlatPricing prices from the product's flat per-unit cost model.
type legacyFlatPricing struct{}

func (s *legacyFlatPricing) Name() string { return StrategyLegacyFlat }

func (s *legacyFlatPricing) Quote(product *catalog.DecorationProduct, req Request, _ *catalog.SizeBucket) (*QuoteResult, error) {
	if !product.HasLegacyCosts() {
		return nil, ErrNoApplicableRule
	}
	return ComposeLegacy(product, req.Quantity, req.ColorCount), nil
}

// Engine is the pricing facade. It is stateless: every calculation fetches
// its inputs once up front and then runs pure computation, so concurrent
// calls need no coordination.
type Engine struct {
	catalog catalog.Reader
	logger  zerolog.Logger
}

// NewEngine creates a pricing engine over the given catalog collaborator.
func NewEngine(reader catalog.Reader) *Engine {
	return &Engine{
		catalog: reader,
		logger:  zerolog.Nop(),
	}
}

// WithLogger attaches a logger for calculation tracing.
func (e *Engine) WithLogger(logger zerolog.Logger) *Engine {
	e.logger = logger
	return e
}

// Calculate resolves a quote for the request, or returns a typed
// *errors.DomainError describing why no quote could be produced. Non-fatal
// conditions (quantity below the product minimum) come back as warnings on
// a still-computed result.
func (e *Engine) Calculate(ctx context.Context, req Request) (*QuoteResult, error) {
	if req.Quantity <= 0 {
		return nil, &domainerrors.DomainError{
			Code:     domainerrors.ErrCodeInvalidRequest,
			Message:  fmt.Sprintf("quantity must be positive, got %d", req.Quantity),
			Severity: domainerrors.SeverityError,
		}
	}
	if err := validateDimensions(req.Width, req.Height); err != nil {
		return nil, err
	}

	product, err := e.catalog.GetDecorationProduct(ctx, req.ProductID)
	if err != nil {
		return nil, domainerrors.NewStorageFailureError("load decoration product", err)
	}
	if product == nil || !product.Active {
		return nil, domainerrors.NewProductNotFoundError(req.ProductID.String())
	}

	var warnings []Warning
	if req.Quantity < product.MinQuantity {
		warnings = append(warnings, Warning{
			Code:    domainerrors.ErrCodeBelowMinimumQuantity,
			Message: fmt.Sprintf("quantity %d is below the product minimum of %d", req.Quantity, product.MinQuantity),
		})
	}

	records, err := e.catalog.GetPricingRecords(ctx, req.ProductID)
	if err != nil {
		return nil, domainerrors.NewStorageFailureError("load pricing records", err)
	}

	var bucket *catalog.SizeBucket
	var buckets []catalog.SizeBucket
	if req.Width != nil && req.Height != nil {
		buckets, err = e.catalog.GetSizeBuckets(ctx, req.ProductID)
		if err != nil {
			return nil, domainerrors.NewStorageFailureError("load size buckets", err)
		}
		bucket = ClassifySize(*req.Width, *req.Height, buckets)
		if bucket != nil {
			e.logger.Debug().
				Str("product_id", req.ProductID.String()).
				Str("bucket", bucket.Name).
				Msg("size classified")
		}
	}

	strategies := []Strategy{&legacyFlatPricing{}}
	if len(records) > 0 {
		strategies = []Strategy{
			&ruleBasedPricing{records: records, buckets: buckets},
			&legacyFlatPricing{},
		}
	}

	for _, s := range strategies {
		result, err := s.Quote(product, req, bucket)
		if errors.Is(err, ErrNoApplicableRule) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Warnings = warnings
		e.logger.Debug().
			Str("product_id", req.ProductID.String()).
			Str("strategy", s.Name()).
			Str("total", result.TotalPrice.StringFixed(2)).
			Msg("quote computed")
		return result, nil
	}

	return nil, domainerrors.NewNoApplicablePricingError(req.ProductID.String())
}

// validateDimensions enforces the width/height contract: both supplied or
// neither, and both strictly positive.
func validateDimensions(width, height *float64) error {
	if width == nil && height == nil {
		return nil
	}
	if width == nil || height == nil {
		return domainerrors.NewInvalidDimensionsError("width and height must be supplied together")
	}
	if *width <= 0 || *height <= 0 {
		return domainerrors.NewInvalidDimensionsError(fmt.Sprintf("width and height must be positive, got %gx%g", *width, *height))
	}
	return nil
}
