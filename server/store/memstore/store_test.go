package memstore_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profiq/open-poll/server/store"
	"github.com/profiq/open-poll/server/store/memstore"
)

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := memstore.NewStore()

	_, err := s.Get(ctx, "a")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, s.Create(ctx, "a", []byte("1")))
	assert.True(t, errors.Is(s.Create(ctx, "a", []byte("2")), store.ErrAlreadyExists))
	require.NoError(t, s.Create(ctx, "poll_b", []byte("2")))
	require.NoError(t, s.Create(ctx, "poll_a", []byte("3")))

	b, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), b)

	keys, err := s.List(ctx, "poll_")
	require.NoError(t, err)
	assert.Equal(t, []string{"poll_a", "poll_b"}, keys)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStoreRunTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("writes are buffered until commit", func(t *testing.T) {
		s := memstore.NewStore()
		require.NoError(t, s.Create(ctx, "k", []byte("old")))

		err := s.RunTransaction(ctx, func(tx store.KVTx) error {
			require.NoError(t, tx.Set("k", []byte("new")))
			b, err := tx.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("new"), b)

			outside, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("old"), outside)
			return nil
		})
		require.NoError(t, err)

		b, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), b)
	})

	t.Run("failed body writes nothing", func(t *testing.T) {
		s := memstore.NewStore()
		require.NoError(t, s.Create(ctx, "k", []byte("old")))

		bodyErr := errors.New("rejected")
		err := s.RunTransaction(ctx, func(tx store.KVTx) error {
			require.NoError(t, tx.Set("k", []byte("new")))
			return bodyErr
		})
		assert.Equal(t, bodyErr, err)

		b, _ := s.Get(ctx, "k")
		assert.Equal(t, []byte("old"), b)
	})

	t.Run("concurrent writer forces a rerun", func(t *testing.T) {
		s := memstore.NewStore()
		require.NoError(t, s.Create(ctx, "k", []byte("a")))

		calls := 0
		err := s.RunTransaction(ctx, func(tx store.KVTx) error {
			calls++
			b, err := tx.Get("k")
			if err != nil {
				return err
			}
			if calls == 1 {
				require.NoError(t, s.RunTransaction(ctx, func(other store.KVTx) error {
					return other.Set("k", []byte("b"))
				}))
			}
			return tx.Set("k", append(b, 'x'))
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)

		b, _ := s.Get(ctx, "k")
		assert.Equal(t, []byte("bx"), b)
	})

	t.Run("deleted and recreated key is a conflict", func(t *testing.T) {
		s := memstore.NewStore()
		require.NoError(t, s.Create(ctx, "k", []byte("a")))

		calls := 0
		err := s.RunTransaction(ctx, func(tx store.KVTx) error {
			calls++
			if _, err := tx.Get("k"); err != nil {
				return err
			}
			if calls == 1 {
				require.NoError(t, s.Delete(ctx, "k"))
				require.NoError(t, s.Create(ctx, "k", []byte("a")))
			}
			return tx.Set("k", []byte("c"))
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("no lost updates", func(t *testing.T) {
		s := memstore.NewStore()
		require.NoError(t, s.Create(ctx, "counter", []byte("0")))

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.RunTransaction(ctx, func(tx store.KVTx) error {
					b, err := tx.Get("counter")
					if err != nil {
						return err
					}
					n, err := strconv.Atoi(string(b))
					if err != nil {
						return err
					}
					return tx.Set("counter", []byte(strconv.Itoa(n+1)))
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		b, _ := s.Get(ctx, "counter")
		assert.Equal(t, strconv.Itoa(writers), string(b))
	})

	t.Run("canceled context", func(t *testing.T) {
		s := memstore.NewStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := s.RunTransaction(cctx, func(tx store.KVTx) error { return nil })
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
