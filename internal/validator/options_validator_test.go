package validator

import (
	"testing"

	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
	"github.com/stretchr/testify/require"
)

func validOptions() *config.Options {
	opts := config.Default()
	opts.AccountName = "teststore"
	opts.AppKey = "key"
	opts.AppToken = "token"
	opts.CustomerEmail = "buyer@example.com"
	opts.PaymentSystemID = 201
	return opts
}

func TestValidateAcceptsValidOptions(t *testing.T) {
	require.Nil(t, NewOptionsValidator().Validate(validOptions()))
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	cfgErr := NewOptionsValidator().Validate(&config.Options{})
	require.NotNil(t, cfgErr)

	fields := make(map[string]bool)
	for _, violation := range cfgErr.Violations {
		fields[violation.Field] = true
	}

	for _, field := range []string{
		"accountName",
		"appKey",
		"appToken",
		"seller",
		"placedOrdersQuantity",
		"placedOrdersConcurrency",
		"salesChannel",
		"minItemsQuantity",
		"maxItemsQuantity",
		"paymentSystemId",
		"customerEmail",
	} {
		require.True(t, fields[field], "expected a violation for %s", field)
	}
}

func TestValidateRejectsInvalidEmail(t *testing.T) {
	opts := validOptions()
	opts.CustomerEmail = "not-an-email"

	cfgErr := NewOptionsValidator().Validate(opts)
	require.NotNil(t, cfgErr)
	require.Len(t, cfgErr.Violations, 1)
	require.Equal(t, "customerEmail", cfgErr.Violations[0].Field)
}

func TestValidateRejectsInvertedItemsRange(t *testing.T) {
	opts := validOptions()
	opts.MinItemsQuantity = 5
	opts.MaxItemsQuantity = 2

	cfgErr := NewOptionsValidator().Validate(opts)
	require.NotNil(t, cfgErr)
	require.Len(t, cfgErr.Violations, 1)
	require.Equal(t, "maxItemsQuantity", cfgErr.Violations[0].Field)
}

func TestValidateRejectsMalformedPriceRange(t *testing.T) {
	opts := validOptions()
	opts.ItemsSearchFilter.PriceRange = []float64{100}

	cfgErr := NewOptionsValidator().Validate(opts)
	require.NotNil(t, cfgErr)
	require.Equal(t, "itemsSearchFilter.priceRange", cfgErr.Violations[0].Field)
}
