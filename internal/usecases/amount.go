package usecases

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	domainerrors "venture-ledger.backend/internal/domain/errors"
)

// MaxAmountDecimals caps preserved fraction digits at the native token's precision
const MaxAmountDecimals = 18

// ParseAmount parses a positive finite decimal amount
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domainerrors.ErrInvalidAmount, raw)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %q must be greater than zero", domainerrors.ErrInvalidAmount, raw)
	}
	return d, nil
}

// CanonicalAmount re-serializes raw as a fixed-point string keeping its
// fraction digits (at most MaxAmountDecimals). Exponent notation in the
// input is expanded; the output never contains one.
func CanonicalAmount(raw string) (string, error) {
	d, err := ParseAmount(raw)
	if err != nil {
		return "", err
	}
	places := -d.Exponent()
	if places < 0 {
		places = 0
	}
	if places > MaxAmountDecimals {
		places = MaxAmountDecimals
	}
	canonical := d.StringFixed(places)
	if canonical == "0" || strings.Trim(canonical, "0.") == "" {
		return "", fmt.Errorf("%w: %q rounds to zero", domainerrors.ErrInvalidAmount, raw)
	}
	return canonical, nil
}

// AmountToWei converts a canonical ether amount to wei
func AmountToWei(canonical string) (*big.Int, error) {
	d, err := ParseAmount(canonical)
	if err != nil {
		return nil, err
	}
	return d.Shift(MaxAmountDecimals).BigInt(), nil
}

// WeiToEther renders wei as a decimal ether string
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -MaxAmountDecimals).String()
}
