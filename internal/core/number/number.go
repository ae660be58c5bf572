// Package number implements rippled's decimal floating point Number with
// guard-digit rounding.
// Reference: rippled/src/libxrpl/basics/Number.cpp
//
// A Number has a 16 digit mantissa in [10^15, 10^16) and an exponent in
// [-32768, 32768]. Every arithmetic result is exactly reproducible across
// implementations, which is what ledger balances require.
package number

import (
	"math"
	"math/big"
)

const (
	minMantissa int64 = 1_000_000_000_000_000 // 10^15
	maxMantissa int64 = 9_999_999_999_999_999 // 10^16 - 1
	minExponent       = -32768
	maxExponent       = 32768

	// zeroExponent matches the default constructed rippled Number{}.
	zeroExponent = math.MinInt32
)

// Number is an immutable decimal floating point value. The zero value is 0.
type Number struct {
	mantissa int64
	exponent int
}

// Zero returns the canonical zero, which is the zero value. Its exponent
// is reported as zeroExponent.
func Zero() Number {
	return Number{}
}

// New returns mantissa * 10^exponent, rounded to nearest.
func New(mantissa int64, exponent int) Number {
	return ToNearest.New(mantissa, exponent)
}

// FromInt returns v as a Number.
func FromInt(v int64) Number {
	return New(v, 0)
}

// FromUint32 returns v as a Number.
func FromUint32(v uint32) Number {
	return New(int64(v), 0)
}

// Mantissa returns the signed mantissa.
func (n Number) Mantissa() int64 { return n.mantissa }

// Exponent returns the exponent. Zero reports math.MinInt32.
func (n Number) Exponent() int {
	if n.mantissa == 0 {
		return zeroExponent
	}
	return n.exponent
}

func (n Number) IsZero() bool { return n.mantissa == 0 }

// Sign returns -1, 0 or 1.
func (n Number) Sign() int {
	switch {
	case n.mantissa < 0:
		return -1
	case n.mantissa > 0:
		return 1
	default:
		return 0
	}
}

func (n Number) Neg() Number {
	if n.mantissa == 0 {
		return Zero()
	}
	return Number{mantissa: -n.mantissa, exponent: n.exponent}
}

func (n Number) Abs() Number {
	if n.mantissa < 0 {
		return n.Neg()
	}
	return n
}

func (n Number) Add(y Number) Number { return add(n, y, ToNearest) }
func (n Number) Sub(y Number) Number { return add(n, y.Neg(), ToNearest) }
func (n Number) Mul(y Number) Number { return mul(n, y, ToNearest) }
func (n Number) Div(y Number) Number { return div(n, y, ToNearest) }

// MulInt and DivInt are shorthands for the common Number * integer forms.
func (n Number) MulInt(v int64) Number { return n.Mul(FromInt(v)) }
func (n Number) DivInt(v int64) Number { return n.Div(FromInt(v)) }

// Cmp returns -1, 0 or 1 comparing n to y.
func (n Number) Cmp(y Number) int {
	if n.Equal(y) {
		return 0
	}
	if n.less(y) {
		return -1
	}
	return 1
}

func (n Number) Equal(y Number) bool {
	if n.mantissa == 0 || y.mantissa == 0 {
		return n.mantissa == y.mantissa
	}
	return n.mantissa == y.mantissa && n.exponent == y.exponent
}

func (n Number) Lt(y Number) bool  { return n.less(y) }
func (n Number) Lte(y Number) bool { return !y.less(n) }
func (n Number) Gt(y Number) bool  { return y.less(n) }
func (n Number) Gte(y Number) bool { return !n.less(y) }

// less follows Number's operator< which relies on both sides being normalized.
func (n Number) less(y Number) bool {
	lneg := n.mantissa < 0
	rneg := y.mantissa < 0
	if lneg != rneg {
		return lneg
	}
	if n.mantissa == 0 {
		return y.mantissa > 0
	}
	if y.mantissa == 0 {
		return n.mantissa < 0
	}
	if n.exponent > y.exponent {
		return lneg
	}
	if n.exponent < y.exponent {
		return !lneg
	}
	return n.mantissa < y.mantissa
}

// Min returns the smaller of a and b.
func Min(a, b Number) Number {
	if b.less(a) {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Number) Number {
	if a.less(b) {
		return b
	}
	return a
}

// normalize brings the mantissa into [minMantissa, maxMantissa] and rounds
// any discarded digits with mode.
func (n *Number) normalize(mode RoundingMode) {
	if n.mantissa == 0 {
		*n = Zero()
		return
	}

	negative := n.mantissa < 0
	var m uint64
	if negative {
		m = uint64(-n.mantissa)
	} else {
		m = uint64(n.mantissa)
	}

	for m < uint64(minMantissa) && n.exponent > minExponent {
		m *= 10
		n.exponent--
	}

	var g guard
	if negative {
		g.setNegative()
	}
	for m > uint64(maxMantissa) {
		if n.exponent >= maxExponent {
			panic("number: normalize overflow")
		}
		g.push(uint(m % 10))
		m /= 10
		n.exponent++
	}

	n.mantissa = int64(m)
	if n.exponent < minExponent || n.mantissa < minMantissa {
		*n = Zero()
		return
	}

	r := g.round(mode)
	if r == 1 || (r == 0 && (n.mantissa&1) == 1) {
		n.mantissa++
		if n.mantissa > maxMantissa {
			n.mantissa /= 10
			n.exponent++
		}
	}
	if n.exponent > maxExponent {
		panic("number: normalize overflow")
	}

	if negative {
		n.mantissa = -n.mantissa
	}
}

// add aligns the exponents, keeping shifted digits in a guard so the sum can
// be rounded with mode.
func add(x, y Number, mode RoundingMode) Number {
	if y.IsZero() {
		return x
	}
	if x.IsZero() {
		return y
	}
	if x.Equal(y.Neg()) {
		return Zero()
	}

	xm, xe, xn := x.mantissa, x.exponent, int64(1)
	if xm < 0 {
		xm, xn = -xm, -1
	}
	ym, ye, yn := y.mantissa, y.exponent, int64(1)
	if ym < 0 {
		ym, yn = -ym, -1
	}

	var g guard
	if xe < ye {
		if xn == -1 {
			g.setNegative()
		}
		for xe < ye {
			g.push(uint(xm % 10))
			xm /= 10
			xe++
		}
	} else if xe > ye {
		if yn == -1 {
			g.setNegative()
		}
		for xe > ye {
			g.push(uint(ym % 10))
			ym /= 10
			ye++
		}
	}

	if xn == yn {
		xm += ym
		if xm > maxMantissa {
			g.push(uint(xm % 10))
			xm /= 10
			xe++
		}
		r := g.round(mode)
		if r == 1 || (r == 0 && (xm&1) == 1) {
			xm++
			if xm > maxMantissa {
				xm /= 10
				xe++
			}
		}
		if xe > maxExponent {
			panic("number: addition overflow")
		}
	} else {
		if xm > ym {
			xm = xm - ym
		} else {
			xm = ym - xm
			xe = ye
			xn = yn
		}
		for xm < minMantissa {
			xm *= 10
			xm -= int64(g.pop())
			xe--
		}
		r := g.round(mode)
		if r == 1 || (r == 0 && (xm&1) == 1) {
			xm--
			if xm < minMantissa {
				xm *= 10
				xe--
			}
		}
		if xe < minExponent {
			return Zero()
		}
	}

	return Number{mantissa: xm * xn, exponent: xe}
}

func mul(x, y Number, mode RoundingMode) Number {
	if x.IsZero() || y.IsZero() {
		return Zero()
	}
	z := new(big.Int).Mul(big.NewInt(x.mantissa), big.NewInt(y.mantissa))
	return fromBig(z, x.exponent+y.exponent, mode)
}

func div(x, y Number, mode RoundingMode) Number {
	if y.IsZero() {
		panic("number: divide by zero")
	}
	if x.IsZero() {
		return Zero()
	}

	np, nm := int64(1), x.mantissa
	if nm < 0 {
		np, nm = -1, -nm
	}
	dp, dm := int64(1), y.mantissa
	if dm < 0 {
		dp, dm = -1, -dm
	}

	// Scaling by 10^17 keeps the truncated quotient inside int64.
	f := new(big.Int).SetUint64(100_000_000_000_000_000)
	q := new(big.Int).Mul(big.NewInt(nm), f)
	q.Quo(q, big.NewInt(dm))

	r := Number{mantissa: q.Int64() * np * dp, exponent: x.exponent - y.exponent - 17}
	r.normalize(mode)
	return r
}

// fromBig reduces an arbitrarily wide mantissa, pushing the discarded digits
// through a guard.
func fromBig(z *big.Int, exponent int, mode RoundingMode) Number {
	if z.Sign() == 0 {
		return Zero()
	}

	var g guard
	negative := z.Sign() < 0
	if negative {
		g.setNegative()
	}
	m := new(big.Int).Abs(z)
	ten := big.NewInt(10)
	rem := new(big.Int)
	limit := big.NewInt(maxMantissa)
	for m.Cmp(limit) > 0 {
		m.DivMod(m, ten, rem)
		g.push(uint(rem.Int64()))
		exponent++
	}

	xm := m.Int64()
	for xm < minMantissa {
		xm *= 10
		exponent--
	}
	r := g.round(mode)
	if r == 1 || (r == 0 && (xm&1) == 1) {
		xm++
		if xm > maxMantissa {
			xm /= 10
			exponent++
		}
	}

	if exponent < minExponent {
		return Zero()
	}
	if exponent > maxExponent {
		panic("number: overflow")
	}
	if negative {
		xm = -xm
	}
	return Number{mantissa: xm, exponent: exponent}
}

// Power returns f^n by repeated squaring. Power(f, 0) is 1.
func Power(f Number, n uint32) Number {
	if n == 0 {
		return FromInt(1)
	}
	if n == 1 {
		return f
	}
	r := Power(f, n/2)
	r = r.Mul(r)
	if n%2 != 0 {
		r = r.Mul(f)
	}
	return r
}

var pow10 = [...]uint64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000,
	100_000_000, 1_000_000_000, 10_000_000_000, 100_000_000_000,
	1_000_000_000_000, 10_000_000_000_000, 100_000_000_000_000,
	1_000_000_000_000_000, 10_000_000_000_000_000, 100_000_000_000_000_000,
	1_000_000_000_000_000_000,
}

// Int64 converts n to an integer, rounding any fractional part with mode.
// It panics if the value does not fit.
func (n Number) Int64(mode RoundingMode) int64 {
	if n.mantissa == 0 {
		return 0
	}
	drops := n.mantissa
	offset := n.exponent
	var g guard
	if drops < 0 {
		g.setNegative()
		drops = -drops
	}
	for ; offset < 0; offset++ {
		g.push(uint(drops % 10))
		drops /= 10
	}
	for ; offset > 0; offset-- {
		if drops > math.MaxInt64/10 {
			panic("number: conversion to int64 overflow")
		}
		drops *= 10
	}
	r := g.round(mode)
	if r == 1 || (r == 0 && (drops&1) == 1) {
		drops++
	}
	if g.sbit {
		drops = -drops
	}
	return drops
}

// RoundToScale rounds n to a multiple of 10^scale using mode. Values whose
// exponent is already at or above scale are returned unchanged.
func RoundToScale(n Number, scale int, mode RoundingMode) Number {
	if n.mantissa == 0 || n.exponent >= scale {
		return n
	}

	negative := n.mantissa < 0
	m := uint64(n.mantissa)
	if negative {
		m = uint64(-n.mantissa)
	}

	var q, rem, unit uint64
	shift := scale - n.exponent
	if shift < len(pow10) {
		unit = pow10[shift]
		q, rem = m/unit, m%unit
	} else {
		// The whole mantissa is below half of one unit at this scale.
		q, rem = 0, m
	}

	up := false
	switch mode {
	case TowardsZero:
	case Downward:
		up = negative && rem != 0
	case Upward:
		up = !negative && rem != 0
	default:
		if unit != 0 {
			switch {
			case rem > unit-rem:
				up = true
			case rem == unit-rem:
				up = q&1 == 1
			}
		}
	}
	if up {
		q++
	}
	if q == 0 {
		return Zero()
	}
	v := int64(q)
	if negative {
		v = -v
	}
	return New(v, scale)
}
