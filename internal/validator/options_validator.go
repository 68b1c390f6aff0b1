package validator

import (
	"fmt"
	"regexp"

	"github.com/juancollazo-ch/vtex-order-placer/internal/apperrors"
	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
)

// OptionsValidator validates the order placer options before a run starts.
// Every violation is collected so the operator can fix the whole file in
// one pass instead of replaying the run per field.
type OptionsValidator struct {
	emailRegex *regexp.Regexp
}

// NewOptionsValidator creates a new OptionsValidator instance
func NewOptionsValidator() *OptionsValidator {
	return &OptionsValidator{
		// Good enough for config validation; the checkout API is the real
		// authority on addresses.
		emailRegex: regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
	}
}

// Validate checks the full option set and returns a ConfigurationError
// carrying every field violation, or nil when the options are usable.
func (v *OptionsValidator) Validate(opts *config.Options) *apperrors.ConfigurationError {
	var violations []apperrors.FieldViolation

	requireString := func(field, value string) {
		if value == "" {
			violations = append(violations, apperrors.FieldViolation{Field: field, Message: "is required"})
		}
	}
	requireMin := func(field string, value, min int) {
		if value < min {
			violations = append(violations, apperrors.FieldViolation{
				Field:   field,
				Message: fmt.Sprintf("must be an integer >= %d", min),
			})
		}
	}

	requireString("accountName", opts.AccountName)
	requireString("appKey", opts.AppKey)
	requireString("appToken", opts.AppToken)
	requireString("seller", opts.Seller)

	requireMin("placedOrdersQuantity", opts.PlacedOrdersQuantity, 1)
	requireMin("placedOrdersConcurrency", opts.PlacedOrdersConcurrency, 1)
	requireMin("salesChannel", opts.SalesChannel, 1)
	requireMin("minItemsQuantity", opts.MinItemsQuantity, 1)
	requireMin("maxItemsQuantity", opts.MaxItemsQuantity, 1)
	requireMin("paymentSystemId", opts.PaymentSystemID, 1)

	if opts.MinItemsQuantity >= 1 && opts.MaxItemsQuantity >= 1 && opts.MaxItemsQuantity < opts.MinItemsQuantity {
		violations = append(violations, apperrors.FieldViolation{
			Field:   "maxItemsQuantity",
			Message: "must be greater than or equal to minItemsQuantity",
		})
	}

	if opts.CustomerEmail == "" {
		violations = append(violations, apperrors.FieldViolation{Field: "customerEmail", Message: "is required"})
	} else if !v.emailRegex.MatchString(opts.CustomerEmail) {
		violations = append(violations, apperrors.FieldViolation{Field: "customerEmail", Message: "must be a valid email"})
	}

	if len(opts.ItemsSearchFilter.PriceRange) != 0 && len(opts.ItemsSearchFilter.PriceRange) != 2 {
		violations = append(violations, apperrors.FieldViolation{
			Field:   "itemsSearchFilter.priceRange",
			Message: "must contain exactly two values [min, max]",
		})
	}

	if len(violations) == 0 {
		return nil
	}

	return &apperrors.ConfigurationError{Violations: violations}
}
