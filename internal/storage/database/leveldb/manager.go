package leveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type Manager struct {
	dbs       map[string]*leveldb.DB
	path      string
	cacheSize int
	mu        sync.Mutex
}

// NewManager returns a manager opening databases under path. cacheSize is
// the block cache capacity in bytes; zero keeps the goleveldb default.
func NewManager(path string, cacheSize int) *Manager {
	return &Manager{
		dbs:       make(map[string]*leveldb.DB),
		path:      path,
		cacheSize: cacheSize,
	}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	var opts *opt.Options
	if m.cacheSize > 0 {
		opts = &opt.Options{BlockCacheCapacity: m.cacheSize}
	}
	db, err := leveldb.OpenFile(filepath.Join(m.path, name+".ldb"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", database.ErrNotOpen, name)
	}
	if err := db.Close(); err != nil {
		return err
	}
	delete(m.dbs, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
