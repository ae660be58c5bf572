// Package memory is an in-memory database.DB for tests and simulations.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
)

// DB is a thread-safe map. Iterators see a snapshot taken when they are
// created.
type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewDB() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := database.Check(ctx, !m.closed); err != nil {
		return nil, err
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, database.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	return m.Batch(ctx, []database.BatchOperation{database.Put(key, value)})
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	return m.Batch(ctx, []database.BatchOperation{database.Del(key)})
}

func (m *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := database.Check(ctx, !m.closed); err != nil {
		return err
	}
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	for _, op := range ops {
		if op.Type == database.BatchPut {
			m.data[string(op.Key)] = bytes.Clone(op.Value)
		} else {
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

type Iterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := database.Check(ctx, !m.closed); err != nil {
		return nil, err
	}
	it := &Iterator{pos: -1}
	for k := range m.data {
		if start != nil && k < string(start) {
			continue
		}
		if end != nil && k >= string(end) {
			continue
		}
		it.keys = append(it.keys, k)
	}
	slices.Sort(it.keys)
	for _, k := range it.keys {
		it.values = append(it.values, bytes.Clone(m.data[k]))
	}
	return it, nil
}

func (it *Iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *Iterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return nil
	}
	return []byte(it.keys[it.pos])
}

func (it *Iterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.values) {
		return nil
	}
	return it.values[it.pos]
}

func (it *Iterator) Error() error { return nil }
func (it *Iterator) Close() error { return nil }

func (m *DB) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
}

// Manager hands out one DB per name. Closing a database discards it.
type Manager struct {
	mu  sync.Mutex
	dbs map[string]*DB
}

func NewManager() *Manager {
	return &Manager{dbs: make(map[string]*DB)}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.dbs[name]
	if !ok {
		db = NewDB()
		m.dbs[name] = db
	}
	return db, nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.dbs[name]
	if !ok {
		return fmt.Errorf("%w: %s", database.ErrNotOpen, name)
	}
	db.close()
	delete(m.dbs, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, db := range m.dbs {
		db.close()
		delete(m.dbs, name)
	}
	return nil
}
