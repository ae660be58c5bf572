package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

func assertNumber(t *testing.T, want string, got number.Number) {
	t.Helper()
	assert.True(t, number.MustParse(want).Equal(got), "want %s, got %s", want, got)
}

func TestTenthBipsOfValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		rate  TenthBips
		want  string
	}{
		{name: "twelve percent", value: "1000", rate: 12000, want: "120"},
		{name: "one tenth bip", value: "100000", rate: 1, want: "1"},
		{name: "full rate", value: "42", rate: MaxRate, want: "42"},
		{name: "zero rate", value: "42", rate: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNumber(t, tt.want, TenthBipsOfValue(number.MustParse(tt.value), tt.rate))
		})
	}
}

func TestPeriodicRate(t *testing.T) {
	r := PeriodicRate(12000, 600)
	assert.Equal(t, number.New(2283105022831050, -21), r)

	assert.True(t, PeriodicRate(0, 600).IsZero())

	// One year at 100% is exactly 1.
	assertNumber(t, "1", PeriodicRate(MaxRate, secondsPerYear))
}

func TestPeriodicPayment(t *testing.T) {
	r := PeriodicRate(12000, 600)

	t.Run("zero principal", func(t *testing.T) {
		assert.True(t, PeriodicPayment(number.Zero(), r, 12).IsZero())
	})
	t.Run("zero payments", func(t *testing.T) {
		assert.True(t, PeriodicPayment(number.FromInt(1000), r, 0).IsZero())
	})
	t.Run("zero interest divides evenly", func(t *testing.T) {
		assertNumber(t, "250", PeriodicPayment(number.FromInt(1000), number.Zero(), 4))
	})
	t.Run("interest raises the payment", func(t *testing.T) {
		p := PeriodicPayment(number.FromInt(1_000_000_000), r, 12)
		assert.True(t, p.Gt(number.MustParse("83334570")))
		assert.True(t, p.Lt(number.MustParse("83334571")))
	})
	t.Run("single payment is principal plus one period", func(t *testing.T) {
		p := PeriodicPayment(number.FromInt(1_000_000_000), r, 1)
		want := number.FromInt(1_000_000_000).Mul(number.FromInt(1).Add(r))
		diff := p.Sub(want).Abs()
		assert.True(t, diff.Lt(number.FromInt(1)), "diff %s", diff)
	})
}

func TestPrincipalFromPeriodicPayment(t *testing.T) {
	t.Run("zero interest", func(t *testing.T) {
		assertNumber(t, "1200", PrincipalFromPeriodicPayment(number.FromInt(100), number.Zero(), 12))
	})

	t.Run("inverts PeriodicPayment", func(t *testing.T) {
		r := PeriodicRate(12000, 600)
		principal := number.FromInt(1_000_000_000)
		back := PrincipalFromPeriodicPayment(PeriodicPayment(principal, r, 12), r, 12)
		diff := back.Sub(principal).Abs()
		require.True(t, diff.Lt(number.MustParse("0.0001")), "diff %s", diff)
	})
}

func TestAccruedInterest(t *testing.T) {
	r := PeriodicRate(12000, 600)
	principal := number.FromInt(1_000_000_000)

	tests := []struct {
		name  string
		now   uint32
		start uint32
		prev  uint32
		want  string
	}{
		{name: "half a period after start", now: 1300, start: 1000, want: "1141.552511415525"},
		{name: "anchored on previous payment", now: 1780, start: 1000, prev: 1600, want: "684.931506849315"},
		{name: "no time elapsed", now: 1000, start: 1000, want: "0"},
		{name: "previous payment in the future", now: 1000, start: 500, prev: 2200, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccruedInterest(principal, r, tt.now, tt.start, tt.prev, 600)
			diff := got.Sub(number.MustParse(tt.want)).Abs()
			assert.True(t, diff.Lt(number.MustParse("0.000001")), "want %s, got %s", tt.want, got)
		})
	}
}

func TestLatePaymentInterest(t *testing.T) {
	principal := number.FromInt(1_000_000_000)

	got := LatePaymentInterest(principal, 2400, 1660, 1600)
	diff := got.Sub(number.MustParse("45.66210045662100")).Abs()
	assert.True(t, diff.Lt(number.MustParse("0.000001")), "got %s", got)

	assert.True(t, LatePaymentInterest(principal, 2400, 1600, 1600).IsZero())
	assert.True(t, LatePaymentInterest(principal, 2400, 1500, 1600).IsZero())
}

func TestCalculateFullPaymentInterest(t *testing.T) {
	r := PeriodicRate(12000, 600)
	got := CalculateFullPaymentInterest(number.FromInt(1_000_000_000), r, 1030, 600, 0, 1000, 3600)

	// 114.155... accrued over 30 seconds plus the 3.6% close penalty.
	diff := got.Sub(number.MustParse("36000114.15525114")).Abs()
	assert.True(t, diff.Lt(number.MustParse("0.0001")), "got %s", got)
}
