package number

// RoundingMode controls how a Number is rounded when digits are discarded.
// Reference: Number::rounding_mode in rippled's Number.h
//
// There is no ambient mode. Methods on Number round to nearest; operations
// that need another mode are invoked on the mode itself, e.g.
// number.Upward.Div(x, y).
type RoundingMode int

const (
	ToNearest   RoundingMode = iota // banker's rounding (default)
	TowardsZero                     // truncate
	Downward                        // towards negative infinity
	Upward                          // towards positive infinity
)

func (m RoundingMode) String() string {
	switch m {
	case ToNearest:
		return "to_nearest"
	case TowardsZero:
		return "towards_zero"
	case Downward:
		return "downward"
	case Upward:
		return "upward"
	default:
		return "unknown"
	}
}

// New builds a normalized Number, rounding discarded digits with m.
func (m RoundingMode) New(mantissa int64, exponent int) Number {
	n := Number{mantissa: mantissa, exponent: exponent}
	n.normalize(m)
	return n
}

// Add returns x + y rounded with m.
func (m RoundingMode) Add(x, y Number) Number { return add(x, y, m) }

// Sub returns x - y rounded with m.
func (m RoundingMode) Sub(x, y Number) Number { return add(x, y.Neg(), m) }

// Mul returns x * y rounded with m.
func (m RoundingMode) Mul(x, y Number) Number { return mul(x, y, m) }

// Div returns x / y rounded with m. It panics if y is zero.
func (m RoundingMode) Div(x, y Number) Number { return div(x, y, m) }
