package md

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrices reads a comma or whitespace separated list of decimal prices.
// NaN, Inf, values beyond float64 range and anything else that is not a
// plain decimal number are rejected.
func ParsePrices(raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	prices := make([]float64, 0, len(fields))
	for _, field := range fields {
		d, err := decimal.NewFromString(field)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", field, err)
		}
		price := d.InexactFloat64()
		if math.IsInf(price, 0) {
			return nil, fmt.Errorf("parse price %q: out of range", field)
		}
		prices = append(prices, price)
	}
	return prices, nil
}
