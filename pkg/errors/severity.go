// Package errors provides severity-aware error types.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// DomainError is a structured error with context.
type DomainError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	EntityID    string   `json:"entity_id,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *DomainError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("[%s] %s: %s (entity: %s)", e.Severity, e.Code, e.Message, e.EntityID)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeNoApplicablePricing  = "NO_APPLICABLE_PRICING"
	ErrCodeInvalidDimensions    = "INVALID_DIMENSIONS"
	ErrCodeBelowMinimumQuantity = "BELOW_MINIMUM_QUANTITY"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeStorageFailure       = "STORAGE_FAILURE"
)

// NewProductNotFoundError creates an error for an unknown decoration product.
func NewProductNotFoundError(productID string) *DomainError {
	return &DomainError{
		Code:        ErrCodeProductNotFound,
		Message:     "Decoration product not found",
		Severity:    SeverityError,
		EntityID:    productID,
		Recoverable: false,
	}
}

// NewNoApplicablePricingError creates an error for a product with no
// matching rule and no legacy cost model.
func NewNoApplicablePricingError(productID string) *DomainError {
	return &DomainError{
		Code:        ErrCodeNoApplicablePricing,
		Message:     "No pricing rule or legacy cost model applies to this request",
		Severity:    SeverityError,
		EntityID:    productID,
		Recoverable: false,
	}
}

// NewInvalidDimensionsError creates an error for bad width/height input.
func NewInvalidDimensionsError(detail string) *DomainError {
	return &DomainError{
		Code:        ErrCodeInvalidDimensions,
		Message:     fmt.Sprintf("Invalid dimensions: %s", detail),
		Severity:    SeverityError,
		Recoverable: false,
	}
}

// NewStorageFailureError wraps an infrastructure failure distinct from
// domain errors, so callers can tell a bad request from a broken backend.
func NewStorageFailureError(op string, err error) *DomainError {
	return &DomainError{
		Code:        ErrCodeStorageFailure,
		Message:     fmt.Sprintf("%s: %v", op, err),
		Severity:    SeverityFatal,
		Recoverable: true,
	}
}
