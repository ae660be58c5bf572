package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
)

func TestCollectorObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	pay := loan.NewLoanPay([20]byte{1}, [32]byte{2}, tx.Amount{})
	c.Observe(pay, tx.ApplyResult{
		Result:  tx.TesSUCCESS,
		Applied: true,
		Events:  []tx.Event{{TxType: tx.TypeLoanPay, Action: "pay", Path: "regular", Payments: 3}},
	})
	c.Observe(pay, tx.ApplyResult{
		Result:  tx.TesSUCCESS,
		Applied: true,
		Events:  []tx.Event{{TxType: tx.TypeLoanPay, Action: "pay", Path: "late", Payments: 1}},
	})
	c.Observe(pay, tx.ApplyResult{Result: tx.TecINSUFFICIENT_PAYMENT, Applied: true})

	set := loan.NewLoanSet([20]byte{1}, [32]byte{3}, number.FromInt(100))
	c.Observe(set, tx.ApplyResult{
		Result:  tx.TesSUCCESS,
		Applied: true,
		Events:  []tx.Event{{TxType: tx.TypeLoanSet, Action: "set"}},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transactions.WithLabelValues("LoanPay", "tesSUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("LoanPay", "tecINSUFFICIENT_PAYMENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("LoanSet", "tesSUCCESS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.settled.WithLabelValues("regular")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settled.WithLabelValues("late")))
	assert.EqualValues(t, 2, histogramCount(t, reg, "lending_payments_per_tx"))
}

func histogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			require.Len(t, f.GetMetric(), 1)
			return f.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
	assert.Panics(t, func() { MustNew(reg) })
}
