package config

import (
	"github.com/spf13/viper"

	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// setDefaults sets all default values. The [lending] defaults are the
// protocol constants.
func setDefaults(v *viper.Viper) {
	d := tx.DefaultConfig()
	v.SetDefault("lending.base_fee", d.BaseFee)
	v.SetDefault("lending.max_payments_per_tx", d.MaxPaymentsPerTransaction)
	v.SetDefault("lending.payments_per_fee_increment", d.PaymentsPerFeeIncrement)
	v.SetDefault("lending.default_payment_interval", d.DefaultPaymentInterval)
	v.SetDefault("lending.default_payment_total", d.DefaultPaymentTotal)
	v.SetDefault("lending.default_grace_period", d.DefaultGracePeriod)
	v.SetDefault("lending.min_payment_interval", d.MinPaymentInterval)

	v.SetDefault("storage.backend", BackendPebble)
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.cache_size", 4096)
	v.SetDefault("storage.compression", "lz4")

	v.SetDefault("history.driver", HistorySQLite)
	v.SetDefault("history.dsn", "./data/history.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", false)
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(err)
	}
	return &c
}
