package bridge

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks that s is a positive base-unit integer.
func ValidateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("amount %q must be an integer number of base units", s)
	}
	if !d.IsPositive() {
		return fmt.Errorf("amount %q must be positive", s)
	}
	return nil
}

// AmountToBigInt converts a validated base-unit amount to a big.Int.
func AmountToBigInt(s string) (*big.Int, error) {
	if err := ValidateAmount(s); err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		// decimal accepts exponent notation, big.Int does not
		d, _ := decimal.NewFromString(s)
		return d.BigInt(), nil
	}
	return v, nil
}

// ToBaseUnits scales a human readable amount (e.g. "1.5") by 10^decimals.
func ToBaseUnits(human string, decimals int32) (string, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", human, err)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return "", fmt.Errorf("amount %q has more than %d decimal places", human, decimals)
	}
	if !scaled.IsPositive() {
		return "", fmt.Errorf("amount %q must be positive", human)
	}
	return scaled.BigInt().String(), nil
}

// FromBaseUnits renders a base-unit amount in token units, for metrics and logs.
func FromBaseUnits(amount string, decimals int32) float64 {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0
	}
	f, _ := d.Shift(-decimals).Float64()
	return f
}
