// Package ledgerstore keeps ledger entries in a database.DB and provides
// the sandboxes transactions are applied in.
package ledgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	crypto "github.com/LeJamon/goxrpl-lending/internal/crypto/common"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	prefixEntry byte = 'e'
	prefixMeta  byte = 'm'

	// DefaultCacheSize is the number of records kept decompressed in memory.
	DefaultCacheSize = 4096
)

var metaParentHash = []byte{prefixMeta, 'p'}

// Options configures a Store.
type Options struct {
	// CacheSize is the number of records cached; zero selects
	// DefaultCacheSize.
	CacheSize   int
	Compression Compression
}

var _ tx.Ledger = (*Store)(nil)

// Store is the ledger state. It implements tx.Ledger.
type Store struct {
	db          database.DB
	compression Compression
	cache       *lru.Cache[[32]byte, []byte]

	// Serializes commits; reads go straight to the database.
	mu         sync.Mutex
	parentHash [32]byte
}

// New opens a store over db.
func New(ctx context.Context, db database.DB, opts Options) (*Store, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Compression == "" {
		opts.Compression = CompressionLZ4
	}
	if opts.Compression != CompressionLZ4 && opts.Compression != CompressionNone {
		return nil, fmt.Errorf("unknown compression %q", opts.Compression)
	}
	cache, err := lru.New[[32]byte, []byte](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, compression: opts.Compression, cache: cache}
	h, err := db.Read(ctx, metaParentHash)
	switch {
	case errors.Is(err, database.ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to read parent hash: %w", err)
	case len(h) != len(s.parentHash):
		return nil, fmt.Errorf("corrupt parent hash of %d bytes", len(h))
	default:
		copy(s.parentHash[:], h)
	}
	return s, nil
}

func entryKey(key [32]byte) []byte {
	return append([]byte{prefixEntry}, key[:]...)
}

// ParentHash identifies the last committed state.
func (s *Store) ParentHash() [32]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parentHash
}

// Read returns the entry at k, or tx.ErrEntryNotFound.
func (s *Store) Read(ctx context.Context, k keylet.Keylet) (entry.Entry, error) {
	raw, ok := s.cache.Get(k.Key)
	if !ok {
		var err error
		raw, err = s.db.Read(ctx, entryKey(k.Key))
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s %x", tx.ErrEntryNotFound, k.Type, k.Key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k.Type, err)
		}
		s.cache.Add(k.Key, raw)
	}

	e, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	if e.Type() != k.Type {
		return nil, fmt.Errorf("%w: want %s, got %s", tx.ErrWrongEntryType, k.Type, e.Type())
	}
	return e, nil
}

// ForEach calls fn for every stored entry in key order.
func (s *Store) ForEach(ctx context.Context, fn func(key [32]byte, e entry.Entry) error) error {
	it, err := s.db.Iterator(ctx, []byte{prefixEntry}, []byte{prefixEntry + 1})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		var key [32]byte
		copy(key[:], it.Key()[1:])
		e, err := decodeRecord(it.Value())
		if err != nil {
			return fmt.Errorf("failed to decode %x: %w", key, err)
		}
		if err := fn(key, e); err != nil {
			return err
		}
	}
	return it.Error()
}

// Sandbox opens a view whose clock reads parentCloseTime.
func (s *Store) Sandbox(parentCloseTime uint32) (tx.Sandbox, error) {
	return newSandbox(s, parentCloseTime), nil
}

// commit writes the sandbox's changes in one batch and advances the parent
// hash.
func (s *Store) commit(ctx context.Context, sb *Sandbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := make([]database.BatchOperation, 0, len(sb.order)+1)
	records := make(map[[32]byte][]byte, len(sb.order))
	for _, key := range sb.order {
		w := sb.writes[key]
		if w.erased {
			ops = append(ops, database.Del(entryKey(key)))
			continue
		}
		if err := w.entry.Validate(); err != nil {
			return fmt.Errorf("%w: %s %x: %v", entry.ErrInvalidEntry, w.entry.Type(), key, err)
		}
		raw, err := encodeRecord(w.entry, s.compression)
		if err != nil {
			return err
		}
		records[key] = raw
		ops = append(ops, database.Put(entryKey(key), raw))
	}

	var seq [4]byte
	binary.BigEndian.PutUint32(seq[:], sb.closeTime)
	next := crypto.Sha512Half(s.parentHash[:], seq[:], sb.digest())
	ops = append(ops, database.Put(metaParentHash, next[:]))

	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	for _, key := range sb.order {
		if raw, ok := records[key]; ok {
			s.cache.Add(key, raw)
		} else {
			s.cache.Remove(key)
		}
	}
	s.parentHash = next
	return nil
}
