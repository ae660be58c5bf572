// Package config loads the lendingd configuration file.
package config

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// Config represents the complete lendingd configuration
type Config struct {
	Lending LendingConfig `toml:"lending" mapstructure:"lending"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// LendingConfig represents the [lending] section
type LendingConfig struct {
	BaseFee                 int64  `toml:"base_fee" mapstructure:"base_fee"`
	MaxPaymentsPerTx        int    `toml:"max_payments_per_tx" mapstructure:"max_payments_per_tx"`
	PaymentsPerFeeIncrement int    `toml:"payments_per_fee_increment" mapstructure:"payments_per_fee_increment"`
	DefaultPaymentInterval  uint32 `toml:"default_payment_interval" mapstructure:"default_payment_interval"`
	DefaultPaymentTotal     uint32 `toml:"default_payment_total" mapstructure:"default_payment_total"`
	DefaultGracePeriod      uint32 `toml:"default_grace_period" mapstructure:"default_grace_period"`
	MinPaymentInterval      uint32 `toml:"min_payment_interval" mapstructure:"min_payment_interval"`
}

// StorageConfig represents the [storage] section
// Selects the key/value backend the ledger state lives in
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// HistoryConfig represents the [history] section
type HistoryConfig struct {
	Driver string `toml:"driver" mapstructure:"driver"`
	DSN    string `toml:"dsn" mapstructure:"dsn"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// MetricsConfig represents the [metrics] section
type MetricsConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

// Storage backends
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendBbolt   = "bbolt"
	BackendMemory  = "memory"
)

// History drivers
const (
	HistoryNone     = "none"
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
)

// GetConfigPath returns the path to the configuration file, empty when
// running on defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// EngineConfig converts the [lending] section to the transaction engine
// settings.
func (c *Config) EngineConfig() tx.Config {
	l := c.Lending
	return tx.Config{
		BaseFee:                   l.BaseFee,
		MaxPaymentsPerTransaction: l.MaxPaymentsPerTx,
		PaymentsPerFeeIncrement:   l.PaymentsPerFeeIncrement,
		DefaultPaymentInterval:    l.DefaultPaymentInterval,
		DefaultPaymentTotal:       l.DefaultPaymentTotal,
		DefaultGracePeriod:        l.DefaultGracePeriod,
		MinPaymentInterval:        l.MinPaymentInterval,
	}
}

// HistoryEnabled reports whether settlement history is recorded.
func (c *Config) HistoryEnabled() bool {
	return c.History.Driver != "" && c.History.Driver != HistoryNone
}
