package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// All pool arithmetic is done on exact integers and rounds toward zero, so
// any rounding remainder stays in the pool.

// InitialShares returns floor(sqrt(amountA * amountB)), the shares minted by
// the deposit that seeds an empty pool.
func InitialShares(amountA, amountB math.Int) (math.Int, error) {
	if !amountA.IsPositive() || !amountB.IsPositive() {
		return math.ZeroInt(), ErrZeroAmount.Wrap("initial deposit amounts must be positive")
	}
	product := Product(amountA, amountB)
	return intFromBig(new(big.Int).Sqrt(product))
}

// ProportionalShares returns min(amountA*total/reserveA, amountB*total/reserveB),
// the shares minted by a deposit into a seeded pool. Any excess of the
// non-limiting asset is not credited to the depositor.
func ProportionalShares(amountA, amountB, reserveA, reserveB, totalShares math.Int) (math.Int, error) {
	if !reserveA.IsPositive() || !reserveB.IsPositive() || !totalShares.IsPositive() {
		return math.ZeroInt(), ErrInvalidPoolState.Wrapf(
			"proportional mint against reserves %s/%s and shares %s", reserveA, reserveB, totalShares)
	}
	sharesA := mulDiv(amountA, totalShares, reserveA)
	sharesB := mulDiv(amountB, totalShares, reserveB)
	if sharesB.Cmp(sharesA) < 0 {
		sharesA = sharesB
	}
	return intFromBig(sharesA)
}

// WithdrawAmounts returns the reserves owed for burning shares:
// reserve*shares/total for each side. Burning every share returns the
// reserves exactly.
func WithdrawAmounts(shares, reserveA, reserveB, totalShares math.Int) (math.Int, math.Int, error) {
	if !totalShares.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrEmptyPool.Wrap("pool has no outstanding shares")
	}
	if shares.GT(totalShares) {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidPoolState.Wrapf(
			"burning %s of %s total shares", shares, totalShares)
	}
	if shares.Equal(totalShares) {
		return reserveA, reserveB, nil
	}
	amountA, err := intFromBig(mulDiv(reserveA, shares, totalShares))
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	amountB, err := intFromBig(mulDiv(reserveB, shares, totalShares))
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return amountA, amountB, nil
}

// ApplyFee returns amount*(FeeDenominator-feeBps)/FeeDenominator.
func ApplyFee(amount math.Int, feeBps uint32) math.Int {
	scaled := new(big.Int).Mul(amount.BigInt(), big.NewInt(int64(FeeDenominator-feeBps)))
	return math.NewIntFromBigInt(scaled.Quo(scaled, big.NewInt(FeeDenominator)))
}

// SwapOutput quotes a constant-product swap:
// out = reserveOut*inAfterFee / (reserveIn+inAfterFee).
// The result is always strictly below reserveOut.
func SwapOutput(amountIn, reserveIn, reserveOut math.Int, feeBps uint32) (amountOut, fee math.Int, err error) {
	if !amountIn.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrZeroAmount.Wrap("swap input must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrEmptyPool.Wrapf("reserves %s/%s", reserveIn, reserveOut)
	}
	if feeBps >= FeeDenominator {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidParams.Wrapf("fee %d bps", feeBps)
	}

	inAfterFee := ApplyFee(amountIn, feeBps)
	fee = amountIn.Sub(inAfterFee)

	denominator := new(big.Int).Add(reserveIn.BigInt(), inAfterFee.BigInt())
	out := new(big.Int).Mul(reserveOut.BigInt(), inAfterFee.BigInt())
	out.Quo(out, denominator)

	amountOut, err = intFromBig(out)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if amountOut.GTE(reserveOut) {
		return math.ZeroInt(), math.ZeroInt(), ErrInvariantViolation.Wrapf(
			"quoted output %s drains reserve %s", amountOut, reserveOut)
	}
	return amountOut, fee, nil
}

// Product returns a*b without a bit-length bound.
func Product(a, b math.Int) *big.Int {
	return new(big.Int).Mul(a.BigInt(), b.BigInt())
}

// ProductNonDecreasing reports whether newA*newB >= oldA*oldB.
func ProductNonDecreasing(oldA, oldB, newA, newB math.Int) bool {
	return Product(newA, newB).Cmp(Product(oldA, oldB)) >= 0
}

func mulDiv(a, b, c math.Int) *big.Int {
	r := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return r.Quo(r, c.BigInt())
}

func intFromBig(x *big.Int) (math.Int, error) {
	if x.BitLen() > math.MaxBitLen {
		return math.ZeroInt(), ErrOverflow.Wrapf("result exceeds %d bits", math.MaxBitLen)
	}
	return math.NewIntFromBigInt(x), nil
}
