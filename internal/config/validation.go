package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Lending.Validate(); err != nil {
		return fmt.Errorf("lending validation failed: %w", err)
	}
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}
	if err := config.History.Validate(); err != nil {
		return fmt.Errorf("history validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	return nil
}

// Validate performs validation on the lending configuration
func (l *LendingConfig) Validate() error {
	if l.BaseFee < 0 {
		return fmt.Errorf("base_fee must be non-negative, got %d", l.BaseFee)
	}
	if l.MaxPaymentsPerTx < 1 {
		return fmt.Errorf("max_payments_per_tx must be at least 1, got %d", l.MaxPaymentsPerTx)
	}
	if l.PaymentsPerFeeIncrement < 1 {
		return fmt.Errorf("payments_per_fee_increment must be at least 1, got %d", l.PaymentsPerFeeIncrement)
	}
	if l.MinPaymentInterval == 0 {
		return fmt.Errorf("min_payment_interval must be positive")
	}
	if l.DefaultPaymentInterval < l.MinPaymentInterval {
		return fmt.Errorf("default_payment_interval %d is below min_payment_interval %d",
			l.DefaultPaymentInterval, l.MinPaymentInterval)
	}
	if l.DefaultPaymentTotal == 0 {
		return fmt.Errorf("default_payment_total must be at least 1")
	}
	if l.DefaultGracePeriod > l.DefaultPaymentInterval {
		return fmt.Errorf("default_grace_period %d exceeds default_payment_interval %d",
			l.DefaultGracePeriod, l.DefaultPaymentInterval)
	}
	return nil
}

// Validate performs validation on the storage configuration
func (s *StorageConfig) Validate() error {
	s.Backend = strings.ToLower(s.Backend)
	validBackends := []string{BackendPebble, BackendLevelDB, BackendBbolt, BackendMemory}
	if !slices.Contains(validBackends, s.Backend) {
		return fmt.Errorf("invalid storage backend: %s (valid options: %s)",
			s.Backend, strings.Join(validBackends, ", "))
	}
	if s.Backend != BackendMemory && s.Path == "" {
		return fmt.Errorf("storage path is required for backend %s", s.Backend)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", s.CacheSize)
	}
	switch s.Compression {
	case "lz4", "none":
	default:
		return fmt.Errorf("invalid compression: %s (valid options: lz4, none)", s.Compression)
	}
	return nil
}

// Validate performs validation on the history configuration
func (h *HistoryConfig) Validate() error {
	switch h.Driver {
	case "", HistoryNone:
		return nil
	case HistorySQLite, HistoryPostgres:
		if h.DSN == "" {
			return fmt.Errorf("history dsn is required for driver %s", h.Driver)
		}
		return nil
	default:
		return fmt.Errorf("invalid history driver: %s (valid options: sqlite, postgres, none)", h.Driver)
	}
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (valid options: text, json)", l.Format)
	}
	return nil
}
