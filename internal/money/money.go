// Package money provides overflow-checked arithmetic on int64 amounts
// expressed in the smallest currency unit. Every cost and payout
// computation in the ledger goes through these helpers so that an
// overflowing amount aborts the operation instead of wrapping.
package money

import (
	"math"

	apperrors "crowdbond/internal/errors"
)

// BasisPointDivisor converts basis points to a fraction: 10000 bps = 100%.
const BasisPointDivisor = 10_000

// Mul multiplies two non-negative amounts, failing on overflow.
func Mul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidParameters, "amounts must not be negative")
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, apperrors.ErrArithmeticOverflow
	}
	return a * b, nil
}

// Add adds two non-negative amounts, failing on overflow.
func Add(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidParameters, "amounts must not be negative")
	}
	if a > math.MaxInt64-b {
		return 0, apperrors.ErrArithmeticOverflow
	}
	return a + b, nil
}

// ApplyBps scales an amount by a basis-point rate, rounding down.
func ApplyBps(amount, bps int64) (int64, error) {
	scaled, err := Mul(amount, bps)
	if err != nil {
		return 0, err
	}
	return scaled / BasisPointDivisor, nil
}
