package di

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeJamon/goxrpl-lending/internal/config"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/metrics"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
	"github.com/LeJamon/goxrpl-lending/internal/storage/ledgerstore"
	"github.com/LeJamon/goxrpl-lending/internal/storage/relationaldb"
	"github.com/LeJamon/goxrpl-lending/internal/storage/relationaldb/postgres"
	"github.com/LeJamon/goxrpl-lending/internal/storage/relationaldb/sqlite"
)

// ledgerDBName is the database the ledger state lives in.
const ledgerDBName = "ledger"

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	logger    *slog.Logger
}

// NewProvider creates a new service provider.
func NewProvider(container *Container, cfg *config.Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		container: container,
		config:    cfg,
		logger:    logger,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	p.container.Register(ServiceConfig, p.config)
	p.container.Register(ServiceLogger, p.logger)

	p.registerStorageBuilders()
	p.registerObserverBuilders()
	p.registerEngineBuilder()
	return nil
}

// registerStorageBuilders registers storage service builders.
func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceDatabase, func(c *Container) (interface{}, error) {
		return ledgerstore.NewManager(p.config.Storage.Backend, filepath.Clean(p.config.Storage.Path), 0)
	})

	p.container.RegisterBuilder(ServiceLedger, func(c *Container) (interface{}, error) {
		m, err := Resolve[database.Manager](c, ServiceDatabase)
		if err != nil {
			return nil, err
		}
		db, err := m.OpenDB(ledgerDBName)
		if err != nil {
			return nil, err
		}
		return ledgerstore.New(context.Background(), db, ledgerstore.Options{
			CacheSize:   p.config.Storage.CacheSize,
			Compression: ledgerstore.Compression(p.config.Storage.Compression),
		})
	})

	p.container.RegisterBuilder(ServiceHistory, func(c *Container) (interface{}, error) {
		h := p.config.History
		switch h.Driver {
		case config.HistorySQLite:
			return sqlite.Open(context.Background(), h.DSN)
		case config.HistoryPostgres:
			return postgres.OpenDSN(context.Background(), h.DSN)
		default:
			return nil, fmt.Errorf("history is disabled")
		}
	})
}

// registerObserverBuilders registers the transaction observers.
func (p *Provider) registerObserverBuilders() {
	p.container.RegisterBuilder(ServiceRegistry, func(c *Container) (interface{}, error) {
		return prometheus.NewRegistry(), nil
	})

	p.container.RegisterBuilder(ServiceMetrics, func(c *Container) (interface{}, error) {
		reg, err := Resolve[*prometheus.Registry](c, ServiceRegistry)
		if err != nil {
			return nil, err
		}
		return metrics.New(reg)
	})
}

func (p *Provider) registerEngineBuilder() {
	p.container.RegisterBuilder(ServiceTxEngine, func(c *Container) (interface{}, error) {
		store, err := Resolve[*ledgerstore.Store](c, ServiceLedger)
		if err != nil {
			return nil, err
		}

		var observers []tx.Observer
		if p.config.HistoryEnabled() {
			repo, err := Resolve[*relationaldb.EventStore](c, ServiceHistory)
			if err != nil {
				return nil, err
			}
			observers = append(observers, relationaldb.NewRecorder(repo, p.logger))
		}
		if p.config.Metrics.Enabled {
			collector, err := Resolve[*metrics.Collector](c, ServiceMetrics)
			if err != nil {
				return nil, err
			}
			observers = append(observers, collector)
		}

		return tx.NewEngine(store, p.config.EngineConfig(), p.logger, observers...), nil
	})
}

// Node bundles the services a command needs.
type Node struct {
	Config  *config.Config
	Ledger  *ledgerstore.Store
	Engine  *tx.Engine
	History relationaldb.EventRepository // nil when disabled
	Metrics *prometheus.Registry         // nil when disabled

	container *Container
}

// Open builds a Node from cfg.
func Open(cfg *config.Config, logger *slog.Logger) (*Node, error) {
	c := New()
	if err := NewProvider(c, cfg, logger).RegisterAll(); err != nil {
		return nil, err
	}

	n := &Node{Config: cfg, container: c}
	var err error
	if n.Engine, err = Resolve[*tx.Engine](c, ServiceTxEngine); err != nil {
		_ = c.Close()
		return nil, err
	}
	if n.Ledger, err = Resolve[*ledgerstore.Store](c, ServiceLedger); err != nil {
		_ = c.Close()
		return nil, err
	}
	if cfg.HistoryEnabled() {
		if n.History, err = Resolve[*relationaldb.EventStore](c, ServiceHistory); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if n.Metrics, err = Resolve[*prometheus.Registry](c, ServiceRegistry); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return n, nil
}

// Close releases the node's databases.
func (n *Node) Close() error {
	return n.container.Close()
}
