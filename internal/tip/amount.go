package tip

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxScale bounds both the exponent of a parsed amount and an asset's
// decimal precision. Rescaling beyond it allocates huge coefficients.
const maxScale = 36

// maxDigits bounds the length of an amount string.
const maxDigits = 64

// ParseAmount validates user input. Empty, non-numeric and non-positive
// values are rejected, as are exponents outside ±maxScale.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount", "enter an amount")
	}
	if len(s) > maxDigits {
		return decimal.Zero, invalid("amount", "amount is too long")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", "amount must be a number")
	}
	if exp := d.Exponent(); exp < -maxScale || exp > maxScale {
		return decimal.Zero, invalid("amount", "amount is out of range")
	}
	if !d.IsPositive() {
		return decimal.Zero, invalid("amount", "amount must be greater than zero")
	}
	return d, nil
}

// RawAmount converts a display amount into base units: amount × 10^decimals.
// Amounts finer than the asset's precision are rejected rather than rounded.
func RawAmount(amount string, decimals int32) (string, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	if decimals < 0 || decimals > maxScale {
		return "", invalid("asset", fmt.Sprintf("unsupported decimal precision %d", decimals))
	}
	if places(d) > decimals {
		return "", invalid("amount", "too many decimal places for this asset")
	}
	return d.Shift(decimals).BigInt().String(), nil
}

// places counts significant fractional digits, ignoring trailing zeros.
func places(d decimal.Decimal) int32 {
	exp := d.Exponent()
	if exp >= 0 {
		return 0
	}
	coef := d.Coefficient()
	ten := big.NewInt(10)
	mod := new(big.Int)
	for exp < 0 {
		q, m := new(big.Int).QuoRem(coef, ten, mod)
		if m.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	return -exp
}

// FromRaw converts base units back into a display amount.
func FromRaw(raw string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid("amount", "raw amount must be an integer")
	}
	return d.Shift(-decimals), nil
}
