// Package units converts between human readable token amounts and the
// 18-decimal fixed point integers the contracts work with.
//
// All arithmetic is arbitrary precision, amounts never pass through float64.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const Decimals = 18

// contract amounts are uint256
const MaxBits = 256

// decimal digits of 2^256-1
const maxDigits = 78

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrTooPrecise     = fmt.Errorf("amount has more than %d fractional digits", Decimals)
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrTooLarge       = fmt.Errorf("amount does not fit in uint%d", MaxBits)
)

// FitsUint256 reports whether v can be packed as a uint256 without wrapping.
func FitsUint256(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.BitLen() <= MaxBits
}

// Amount is a decimal token amount as typed by the operator.
type Amount struct {
	d decimal.Decimal
}

// ParseAmount accepts plain decimal notation ("100", "0.5", "1e-3").
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	if d.IsZero() {
		return Amount{d: decimal.Zero}, nil
	}

	// integer digits of the base unit value, checked before anything is scaled
	digits := d.NumDigits() + int(d.Exponent()) + Decimals
	if digits > maxDigits {
		return Amount{}, ErrTooLarge
	}
	if digits <= 0 || !d.Shift(Decimals).IsInteger() {
		return Amount{}, ErrTooPrecise
	}
	a := Amount{d: d}
	if !FitsUint256(a.Base()) {
		return Amount{}, ErrTooLarge
	}
	return a, nil
}

func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromBase wraps a base unit integer.
func AmountFromBase(v *big.Int) Amount {
	return Amount{d: decimal.NewFromBigInt(v, -Decimals)}
}

// Base returns the amount in base units (amount * 10^18).
func (a Amount) Base() *big.Int {
	return a.d.Shift(Decimals).BigInt()
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

func (a Amount) String() string {
	return a.d.String()
}

// ToBase converts a decimal string to base units.
func ToBase(s string) (*big.Int, error) {
	a, err := ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return a.Base(), nil
}

// FromBase renders base units as a decimal string without trailing zeros.
func FromBase(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return AmountFromBase(v).String()
}
