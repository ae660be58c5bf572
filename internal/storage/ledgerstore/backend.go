package ledgerstore

import (
	"fmt"
	"os"

	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/bbolt"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/leveldb"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/memory"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/pebble"
)

// Backends names the supported storage engines.
var Backends = []string{"pebble", "leveldb", "bbolt", "memory"}

// NewManager returns the database manager for backend rooted at path.
// cacheSize is in bytes and only used by engines with a block cache.
func NewManager(backend, path string, cacheSize int) (database.Manager, error) {
	if backend != "memory" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	switch backend {
	case "pebble":
		return pebble.NewManager(path, int64(cacheSize)), nil
	case "leveldb":
		return leveldb.NewManager(path, cacheSize), nil
	case "bbolt":
		return bbolt.NewManager(path), nil
	case "memory":
		return memory.NewManager(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
