// Package metrics exports lending transaction counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

const namespace = "lending"

// Collector is a tx.Observer that counts applied transactions and settled
// payments.
type Collector struct {
	transactions *prometheus.CounterVec
	settled      *prometheus.CounterVec
	perTx        prometheus.Histogram
}

var _ tx.Observer = (*Collector)(nil)

// New creates a Collector and registers it on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Lending transactions processed, by type and result code.",
		}, []string{"type", "result"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_settled_total",
			Help:      "Scheduled loan payments settled, by payment path.",
		}, []string{"path"}),
		perTx: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payments_per_tx",
			Help:      "Scheduled payments settled by a single LoanPay.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
	}
	for _, m := range []prometheus.Collector{c.transactions, c.settled, c.perTx} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is New that panics on registration failure.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// Observe implements tx.Observer.
func (c *Collector) Observe(t tx.Transaction, res tx.ApplyResult) {
	c.transactions.WithLabelValues(t.TxType().String(), res.Result.String()).Inc()
	if !res.Result.IsSuccess() {
		return
	}
	for _, ev := range res.Events {
		if ev.Path == "" {
			continue
		}
		c.settled.WithLabelValues(ev.Path).Add(float64(ev.Payments))
		c.perTx.Observe(float64(ev.Payments))
	}
}
