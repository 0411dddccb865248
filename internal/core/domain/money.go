package domain

import (
	"errors"
	"math"
	"math/big"
)

// ErrMoneyOverflow reports an amount outside the int64 range.
var ErrMoneyOverflow = errors.New("amount overflows int64 minor units")

// Money is an amount in integer minor units (e.g. paise or cents). All
// billing arithmetic stays in integers so totals reproduce exactly.
type Money int64

// MulDiv returns m*n/d rounded half-up. Intermediate products use
// arbitrary precision; a result that does not fit in Money is
// ErrMoneyOverflow.
func (m Money) MulDiv(n, d int64) (Money, error) {
	if d == 0 {
		return 0, nil
	}
	p := new(big.Int).Mul(big.NewInt(int64(m)), big.NewInt(n))
	p.Add(p, big.NewInt(d/2))
	p.Quo(p, big.NewInt(d))
	if !p.IsInt64() {
		return 0, ErrMoneyOverflow
	}
	return Money(p.Int64()), nil
}

// Add returns m+o, or ErrMoneyOverflow when the sum wraps.
func (m Money) Add(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, ErrMoneyOverflow
	}
	return m + o, nil
}

// Sum adds the given amounts.
func Sum(amounts ...Money) (Money, error) {
	var total Money
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}
