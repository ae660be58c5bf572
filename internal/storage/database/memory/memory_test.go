package memory

import (
	"context"
	"testing"

	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManager(t *testing.T) {
	dbtest.Run(t, NewManager())
}

func TestIteratorSnapshot(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	require.NoError(t, db.Write(ctx, []byte("a"), []byte("1")))

	it, err := db.Iterator(ctx, nil, nil)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("b"), []byte("2")))

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"a"}, keys)
}

func TestBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := NewDB()

	err := db.Batch(ctx, []database.BatchOperation{
		database.Put([]byte("a"), []byte("1")),
		{Type: database.BatchOpType(7), Key: []byte("b")},
	})
	require.Error(t, err)

	_, err = db.Read(ctx, []byte("a"))
	assert.ErrorIs(t, err, database.ErrKeyNotFound)
}

func TestClosedDB(t *testing.T) {
	m := NewManager()
	db, err := m.OpenDB("x")
	require.NoError(t, err)
	require.NoError(t, m.CloseDB("x"))

	_, err = db.Read(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, database.ErrDBClosed)
}
