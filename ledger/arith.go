package ledger

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// addU64 returns a+b or ErrArithmeticOverflow.
func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrArithmeticOverflow, a, b)
	}
	return sum, nil
}

// subU64 returns a-b or ErrArithmeticUnderflow.
func subU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, fmt.Errorf("%w: %d - %d", ErrArithmeticUnderflow, a, b)
	}
	return diff, nil
}

// mulDiv returns floor(a*b/d), computing the product in 256 bits so it
// cannot wrap. The quotient must fit in 64 bits.
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	x := new(uint256.Int).SetUint64(a)
	y := new(uint256.Int).SetUint64(b)
	x.Mul(x, y)
	x.Div(x, y.SetUint64(d))
	if !x.IsUint64() {
		return 0, fmt.Errorf("%w: %d * %d / %d", ErrArithmeticOverflow, a, b, d)
	}
	return x.Uint64(), nil
}
