package number

// guard preserves digits discarded while scaling a mantissa down so the
// final result can be rounded correctly.
// Reference: rippled Number::Guard (Number.cpp)
type guard struct {
	digits uint64 // 16 BCD guard digits
	xbit   bool   // non-zero digit shifted off the end
	sbit   bool   // true when the value being rounded is negative
}

func (g *guard) setNegative() { g.sbit = true }

// push adds a digit to the guard, shifting existing digits right.
func (g *guard) push(d uint) {
	g.xbit = g.xbit || (g.digits&0x000000000000000F) != 0
	g.digits >>= 4
	g.digits |= uint64(d&0x0F) << 60
}

// pop removes and returns the most significant guard digit.
func (g *guard) pop() uint {
	d := uint((g.digits & 0xF000000000000000) >> 60)
	g.digits <<= 4
	return d
}

// round returns 1 to round the magnitude up, -1 to leave it, and 0 for an
// exact half under ToNearest.
func (g *guard) round(mode RoundingMode) int {
	switch mode {
	case TowardsZero:
		return -1
	case Downward:
		if g.sbit && (g.digits > 0 || g.xbit) {
			return 1
		}
		return -1
	case Upward:
		if g.sbit {
			return -1
		}
		if g.digits > 0 || g.xbit {
			return 1
		}
		return -1
	}

	if g.digits > 0x5000000000000000 {
		return 1
	}
	if g.digits < 0x5000000000000000 {
		return -1
	}
	if g.xbit {
		return 1
	}
	return 0
}
