// Package money holds the currency helpers shared by the payroll calculator,
// the line-item ledger and the payslip composer.
package money

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is printed in front of every formatted amount.
const CurrencyPrefix = "Rs."

// Placeholder is returned by FormatCurrency for missing values.
const Placeholder = "-"

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// RoundMoney rounds to 2 decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseAmount reads the leading number of s. Trailing garbage is ignored
// ("12.5abc" is 12.5); a string without a leading number is rejected.
func ParseAmount(s string) (decimal.Decimal, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero, false
	}
	m = strings.TrimSuffix(m, ".")
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatCurrency renders a value for display. It never panics: nil and empty
// values become Placeholder and anything non-numeric is passed through.
func FormatCurrency(v any) string {
	switch val := v.(type) {
	case nil:
		return Placeholder
	case decimal.Decimal:
		return format(val)
	case *decimal.Decimal:
		if val == nil {
			return Placeholder
		}
		return format(*val)
	case decimal.NullDecimal:
		if !val.Valid {
			return Placeholder
		}
		return format(val.Decimal)
	case string:
		if strings.TrimSpace(val) == "" {
			return Placeholder
		}
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return val
		}
		return format(d)
	case *string:
		if val == nil {
			return Placeholder
		}
		return FormatCurrency(*val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Sprint(val)
		}
		return format(decimal.NewFromFloat(val))
	case float32:
		return FormatCurrency(float64(val))
	case int:
		return format(decimal.NewFromInt(int64(val)))
	case int64:
		return format(decimal.NewFromInt(val))
	case int32:
		return format(decimal.NewFromInt32(val))
	case int16:
		return format(decimal.NewFromInt(int64(val)))
	case int8:
		return format(decimal.NewFromInt(int64(val)))
	case uint:
		return format(decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(val)), 0))
	case uint64:
		return format(decimal.NewFromBigInt(new(big.Int).SetUint64(val), 0))
	case uint32:
		return format(decimal.NewFromInt(int64(val)))
	case uint16:
		return format(decimal.NewFromInt(int64(val)))
	case uint8:
		return format(decimal.NewFromInt(int64(val)))
	default:
		return fmt.Sprint(v)
	}
}

// FormatHours renders an hour quantity with exactly 2 decimals.
func FormatHours(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func format(d decimal.Decimal) string {
	return CurrencyPrefix + " " + d.StringFixed(2)
}
