package leveldb

import (
	"testing"

	"github.com/LeJamon/goxrpl-lending/internal/storage/database/dbtest"
)

func TestLeveldbManager(t *testing.T) {
	dbtest.Run(t, NewManager(t.TempDir(), 0))
}
