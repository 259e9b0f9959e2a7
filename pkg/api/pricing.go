// Package api defines the request/response contracts shared by the HTTP
// server and the CLI. The shapes here are the de facto contract with the
// admin UI.
package api

import (
	"fmt"

	"github.com/google/uuid"

	"decoration-cost/catalog"
	"decoration-cost/decision/pricing"
)

// QuoteRequest is the wire input for a pricing calculation.
type QuoteRequest struct {
	DecorationProductID string   `json:"decorationProductId"`
	Quantity            int      `json:"quantity"`
	Width               *float64 `json:"width,omitempty"`
	Height              *float64 `json:"height,omitempty"`
	ColorCount          *int     `json:"colorCount,omitempty"`
	ArtworkType         *string  `json:"artworkType,omitempty"`
	VariantType         *string  `json:"variantType,omitempty"`
	RushService         bool     `json:"rushService"`
}

// ToDomain validates the wire request and converts it to an engine request.
func (r QuoteRequest) ToDomain() (pricing.Request, error) {
	productID, err := uuid.Parse(r.DecorationProductID)
	if err != nil {
		return pricing.Request{}, fmt.Errorf("invalid decorationProductId: %w", err)
	}

	req := pricing.Request{
		ProductID:   productID,
		Quantity:    r.Quantity,
		Width:       r.Width,
		Height:      r.Height,
		ColorCount:  r.ColorCount,
		VariantType: r.VariantType,
		RushService: r.RushService,
	}
	if r.ArtworkType != nil {
		at, err := catalog.ParseArtworkType(*r.ArtworkType)
		if err != nil {
			return pricing.Request{}, err
		}
		req.ArtworkType = &at
	}
	return req, nil
}

// BreakdownLineResponse is one itemized quote component on the wire.
type BreakdownLineResponse struct {
	Description     string  `json:"description"`
	UnitPrice       *string `json:"unitPrice,omitempty"`
	Quantity        *int    `json:"quantity,omitempty"`
	TotalPrice      string  `json:"totalPrice"`
	Type            string  `json:"type"`
	IncludedInTotal bool    `json:"includedInTotal"`
}

// AppliedPricingResponse describes the rule a quote resolved against.
type AppliedPricingResponse struct {
	MinQuantity int     `json:"minQuantity"`
	MaxQuantity *int    `json:"maxQuantity,omitempty"`
	SizeRange   *string `json:"sizeRange,omitempty"`
	ColorCount  *int    `json:"colorCount,omitempty"`
	ArtworkType *string `json:"artworkType,omitempty"`
	VariantType *string `json:"variantType,omitempty"`
}

// QuoteResponse is the wire output of a pricing calculation. Money travels
// as fixed-point strings so no client ever re-rounds it.
type QuoteResponse struct {
	UnitPrice      string                  `json:"unitPrice"`
	TotalUnitCost  string                  `json:"totalUnitCost"`
	SetupFee       *string                 `json:"setupFee,omitempty"`
	SampleFee      *string                 `json:"sampleFee,omitempty"`
	EditFee        *string                 `json:"editFee,omitempty"`
	RushFee        *string                 `json:"rushFee,omitempty"`
	TotalPrice     string                  `json:"totalPrice"`
	Breakdown      []BreakdownLineResponse `json:"breakdown"`
	AppliedPricing *AppliedPricingResponse `json:"appliedPricing,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
	Strategy       string                  `json:"strategy"`
}

// NewQuoteResponse converts an engine result to the wire shape.
func NewQuoteResponse(result *pricing.QuoteResult) QuoteResponse {
	resp := QuoteResponse{
		UnitPrice:     result.UnitPrice.StringFixed(2),
		TotalUnitCost: result.TotalUnitCost.StringFixed(2),
		TotalPrice:    result.TotalPrice.StringFixed(2),
		Breakdown:     make([]BreakdownLineResponse, 0, len(result.Breakdown)),
		Strategy:      result.Strategy,
	}

	for _, line := range result.Breakdown {
		out := BreakdownLineResponse{
			Description:     line.Description,
			Quantity:        line.Quantity,
			TotalPrice:      line.TotalPrice.StringFixed(2),
			Type:            string(line.Type),
			IncludedInTotal: line.Included,
		}
		if line.UnitPrice != nil {
			v := line.UnitPrice.StringFixed(2)
			out.UnitPrice = &v
		}
		resp.Breakdown = append(resp.Breakdown, out)
	}

	if fee := result.FeeTotal(pricing.LineSetup); fee != nil {
		v := fee.StringFixed(2)
		resp.SetupFee = &v
	}
	if fee := result.FeeTotal(pricing.LineSample); fee != nil {
		v := fee.StringFixed(2)
		resp.SampleFee = &v
	}
	if fee := result.FeeTotal(pricing.LineEdit); fee != nil {
		v := fee.StringFixed(2)
		resp.EditFee = &v
	}
	if fee := result.FeeTotal(pricing.LineRush); fee != nil {
		v := fee.StringFixed(2)
		resp.RushFee = &v
	}

	if result.Applied != nil {
		applied := &AppliedPricingResponse{
			MinQuantity: result.Applied.MinQuantity,
			MaxQuantity: result.Applied.MaxQuantity,
			SizeRange:   result.Applied.SizeRange,
			ColorCount:  result.Applied.ColorCount,
			VariantType: result.Applied.VariantType,
		}
		if result.Applied.ArtworkType != nil {
			v := string(*result.Applied.ArtworkType)
			applied.ArtworkType = &v
		}
		resp.AppliedPricing = applied
	}

	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, w.Message)
	}
	return resp
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
