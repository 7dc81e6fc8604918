package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ValidationError reports an argument that breaks an entity rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizeName trims surrounding whitespace and applies NFC so that the
// same visible name typed on different keyboards stores identically.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateName rejects names that are empty after normalization.
func ValidateName(field, name string) error {
	if NormalizeName(name) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}

// ValidatePrice rejects negative prices. Zero is allowed.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return &ValidationError{Field: "price", Message: fmt.Sprintf("must be >= 0, got %s", price)}
	}
	return nil
}

// ValidateRate rejects rates that are zero or negative.
func ValidateRate(field string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be > 0, got %s", rate)}
	}
	return nil
}

// ValidateQuantity rejects quantities below one.
func ValidateQuantity(quantity int64) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Message: fmt.Sprintf("must be >= 1, got %d", quantity)}
	}
	return nil
}

// Validate checks the order header fields. Line items are validated separately.
func (o NewOrder) Validate() error {
	if err := ValidateName("customerName", o.CustomerName); err != nil {
		return err
	}
	if strings.TrimSpace(o.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "must not be empty"}
	}
	if o.Latitude != nil && (*o.Latitude < -90 || *o.Latitude > 90) {
		return &ValidationError{Field: "latitude", Message: fmt.Sprintf("must be within [-90, 90], got %g", *o.Latitude)}
	}
	if o.Longitude != nil && (*o.Longitude < -180 || *o.Longitude > 180) {
		return &ValidationError{Field: "longitude", Message: fmt.Sprintf("must be within [-180, 180], got %g", *o.Longitude)}
	}
	return nil
}
