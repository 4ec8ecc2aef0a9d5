package domain

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

const (
	// Decimals is the only asset precision the ledgers accept.
	Decimals = 18

	MaxBasisPoints = 10000
)

// Amount is an unsigned arbitrary precision count of base units.
type Amount = sdkmath.Uint

var unit = sdkmath.NewUintFromString("1000000000000000000")

func ZeroAmount() Amount {
	return sdkmath.ZeroUint()
}

func NewAmount(baseUnits uint64) Amount {
	return sdkmath.NewUint(baseUnits)
}

// Tokens converts whole tokens into base units.
func Tokens(whole uint64) Amount {
	return sdkmath.NewUint(whole).Mul(unit)
}

func ParseAmount(s string) (Amount, error) {
	a, err := sdkmath.ParseUint(s)
	if err != nil {
		return ZeroAmount(), fmt.Errorf("amount %q: %w", s, err)
	}
	return a, nil
}

// MinAmount returns the smaller of a and b.
func MinAmount(a, b Amount) Amount {
	if a.LT(b) {
		return a
	}
	return b
}

// BasisPoints is a percentage expressed in 1/10000 units.
type BasisPoints uint32

func (p BasisPoints) Valid() bool {
	return p <= MaxBasisPoints
}

// Of returns floor(amount * p / 10000).
func (p BasisPoints) Of(amount Amount) Amount {
	if p == 0 || amount.IsZero() {
		return ZeroAmount()
	}
	return amount.MulUint64(uint64(p)).QuoUint64(MaxBasisPoints)
}
