// Package dbtest is the behavior every database.Manager backend must show.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/LeJamon/goxrpl-lending/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises m. The manager is closed when the test ends.
func Run(t *testing.T, m database.Manager) {
	t.Helper()
	t.Cleanup(func() { _ = m.Close() })
	ctx := context.Background()

	t.Run("read write delete", func(t *testing.T) {
		db, err := m.OpenDB("basic")
		require.NoError(t, err)

		_, err = db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, db.Delete(ctx, []byte("k")))
		_, err = db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("batch", func(t *testing.T) {
		db, err := m.OpenDB("batch")
		require.NoError(t, err)

		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
		ops := []database.BatchOperation{database.Del([]byte("gone"))}
		for i := 0; i < 10; i++ {
			ops = append(ops, database.Put([]byte(fmt.Sprintf("key-%02d", i)), []byte(fmt.Sprintf("value-%d", i))))
		}
		require.NoError(t, db.Batch(ctx, ops))

		for i := 0; i < 10; i++ {
			got, err := db.Read(ctx, []byte(fmt.Sprintf("key-%02d", i)))
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("value-%d", i), string(got))
		}
		_, err = db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		err = db.Batch(ctx, []database.BatchOperation{{Type: database.BatchOpType(99), Key: []byte("bad")}})
		assert.Error(t, err)
	})

	t.Run("iterator range", func(t *testing.T) {
		db, err := m.OpenDB("iter")
		require.NoError(t, err)

		for _, k := range []string{"a", "b", "c", "d", "e"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v"+k)))
		}

		collect := func(start, end []byte) []string {
			it, err := db.Iterator(ctx, start, end)
			require.NoError(t, err)
			defer it.Close()
			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				assert.Equal(t, "v"+string(it.Key()), string(it.Value()))
			}
			require.NoError(t, it.Error())
			return keys
		}

		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, collect(nil, nil))
		assert.Equal(t, []string{"b", "c"}, collect([]byte("b"), []byte("d")))
		assert.Equal(t, []string{"d", "e"}, collect([]byte("d"), nil))
		assert.Empty(t, collect([]byte("x"), nil))
	})

	t.Run("canceled context", func(t *testing.T) {
		db, err := m.OpenDB("canceled")
		require.NoError(t, err)
		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = db.Read(canceled, []byte("k"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, db.Write(canceled, []byte("k"), []byte("w")), context.Canceled)
		assert.ErrorIs(t, db.Batch(canceled, []database.BatchOperation{database.Del([]byte("k"))}), context.Canceled)
		_, err = db.Iterator(canceled, nil, nil)
		assert.ErrorIs(t, err, context.Canceled)

		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("reopen and close", func(t *testing.T) {
		db, err := m.OpenDB("lifecycle")
		require.NoError(t, err)
		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))

		again, err := m.OpenDB("lifecycle")
		require.NoError(t, err)
		got, err := again.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		require.NoError(t, m.CloseDB("lifecycle"))
		assert.ErrorIs(t, m.CloseDB("lifecycle"), database.ErrNotOpen)
	})
}
