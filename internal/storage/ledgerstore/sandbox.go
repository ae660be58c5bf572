package ledgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	crypto "github.com/LeJamon/goxrpl-lending/internal/crypto/common"
)

var _ tx.Sandbox = (*Sandbox)(nil)

type pendingWrite struct {
	entry  entry.Entry
	erased bool
}

// Sandbox buffers a transaction's writes over a Store. Nothing reaches the
// store until Commit.
type Sandbox struct {
	store     *Store
	closeTime uint32

	writes map[[32]byte]*pendingWrite
	order  [][32]byte
	done   bool
}

func newSandbox(s *Store, closeTime uint32) *Sandbox {
	return &Sandbox{
		store:     s,
		closeTime: closeTime,
		writes:    make(map[[32]byte]*pendingWrite),
	}
}

func (sb *Sandbox) ParentCloseTime() uint32 {
	return sb.closeTime
}

func (sb *Sandbox) Read(k keylet.Keylet) (entry.Entry, error) {
	if w, ok := sb.writes[k.Key]; ok {
		if w.erased {
			return nil, fmt.Errorf("%w: %s %x", tx.ErrEntryNotFound, k.Type, k.Key)
		}
		if w.entry.Type() != k.Type {
			return nil, fmt.Errorf("%w: want %s, got %s", tx.ErrWrongEntryType, k.Type, w.entry.Type())
		}
		return w.entry, nil
	}
	return sb.store.Read(context.Background(), k)
}

func (sb *Sandbox) Exists(k keylet.Keylet) (bool, error) {
	_, err := sb.Read(k)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (sb *Sandbox) Insert(k keylet.Keylet, e entry.Entry) error {
	exists, err := sb.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s %x", tx.ErrEntryExists, k.Type, k.Key)
	}
	sb.put(k.Key, &pendingWrite{entry: e})
	return nil
}

func (sb *Sandbox) Update(k keylet.Keylet, e entry.Entry) error {
	exists, err := sb.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s %x", tx.ErrEntryNotFound, k.Type, k.Key)
	}
	sb.put(k.Key, &pendingWrite{entry: e})
	return nil
}

func (sb *Sandbox) Erase(k keylet.Keylet) error {
	exists, err := sb.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s %x", tx.ErrEntryNotFound, k.Type, k.Key)
	}
	sb.put(k.Key, &pendingWrite{erased: true})
	return nil
}

func (sb *Sandbox) put(key [32]byte, w *pendingWrite) {
	if _, seen := sb.writes[key]; !seen {
		sb.order = append(sb.order, key)
	}
	sb.writes[key] = w
}

// Commit persists the buffered writes. A sandbox commits at most once.
func (sb *Sandbox) Commit() error {
	if sb.done {
		return fmt.Errorf("sandbox already closed")
	}
	if err := sb.store.commit(context.Background(), sb); err != nil {
		return err
	}
	sb.done = true
	return nil
}

// Discard drops the buffered writes. It is safe after Commit.
func (sb *Sandbox) Discard() {
	sb.done = true
	sb.writes = nil
	sb.order = nil
}

// digest summarizes which keys the sandbox touched.
func (sb *Sandbox) digest() []byte {
	keys := make([][]byte, 0, len(sb.order))
	for _, k := range sb.order {
		keys = append(keys, k[:])
	}
	h := crypto.Sha512Half(keys...)
	return h[:]
}

func isNotFound(err error) bool {
	return errors.Is(err, tx.ErrEntryNotFound)
}
