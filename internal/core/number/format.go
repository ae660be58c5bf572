package number

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var errBadBinary = errors.New("number: invalid binary encoding")

// String renders n the way rippled's to_string(Number) does: plain decimal
// for exponents in [-25, -5], mantissa/exponent notation otherwise.
func (n Number) String() string {
	if n.mantissa == 0 {
		return "0"
	}
	if n.exponent != 0 && (n.exponent < -25 || n.exponent > -5) {
		return strconv.FormatInt(n.mantissa, 10) + "e" + strconv.Itoa(n.exponent)
	}

	neg := n.mantissa < 0
	m := n.mantissa
	if neg {
		m = -m
	}
	digits := strconv.FormatInt(m, 10)
	if n.exponent == 0 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	pre := len(digits) + n.exponent
	if pre <= 0 {
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -pre))
		b.WriteString(strings.TrimRight(digits, "0"))
		return b.String()
	}
	b.WriteString(digits[:pre])
	if frac := strings.TrimRight(digits[pre:], "0"); frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Parse reads a decimal string such as "1000", "-0.25" or "2283105022831050e-21".
// Digits beyond the 16 digit mantissa are rounded to nearest.
func Parse(s string) (Number, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero(), fmt.Errorf("invalid number %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// FromDecimal converts a shopspring decimal, rounding to nearest.
func FromDecimal(d decimal.Decimal) Number {
	return fromBig(d.Coefficient(), int(d.Exponent()), ToNearest)
}

// Decimal returns the exact value of n as a shopspring decimal.
func (n Number) Decimal() decimal.Decimal {
	if n.mantissa == 0 {
		return decimal.Zero
	}
	return decimal.New(n.mantissa, int32(n.exponent))
}

func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// MarshalBinary encodes the mantissa and exponent as 12 big-endian bytes.
func (n Number) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint64(buf[:8], uint64(n.mantissa))
	binary.BigEndian.PutUint32(buf[8:], uint32(int32(n.Exponent())))
	return buf, nil
}

func (n *Number) UnmarshalBinary(data []byte) error {
	if len(data) != 12 {
		return errBadBinary
	}
	m := int64(binary.BigEndian.Uint64(data[:8]))
	e := int(int32(binary.BigEndian.Uint32(data[8:])))
	if m == 0 {
		*n = Zero()
		return nil
	}
	v := Number{mantissa: m, exponent: e}
	if abs := v.Abs().mantissa; abs < minMantissa || abs > maxMantissa {
		return errBadBinary
	}
	*n = v
	return nil
}
