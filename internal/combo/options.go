package combo

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Validate checks the limit range.
func (o FetchOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return E(KindValidation, "options", fmt.Errorf("limit must be between %d and %d, got %d", MinLimit, MaxLimit, o.Limit))
	}
	return nil
}

// FormatPrice renders cents as a two-decimal amount followed by currency.
// An empty currency defaults to "€".
func FormatPrice(cents int, currency string) string {
	if currency == "" {
		currency = "€"
	}
	return decimal.New(int64(cents), -2).StringFixed(2) + currency
}

// FormatOptionalPrice is FormatPrice for absent prices, rendered as "-".
func FormatOptionalPrice(cents *int, currency string) string {
	if cents == nil {
		return "-"
	}
	return FormatPrice(*cents, currency)
}
