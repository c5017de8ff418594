package firestore

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/store"
	"github.com/profiq/open-poll/server/utils/testutils"
)

// setupTestStore connects to the emulator given by FIRESTORE_EMULATOR_HOST. Every test uses its own collection.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	s, err := NewStore(context.Background(), Config{
		ProjectID:  "open-poll-test",
		Collection: "test_" + model.NewId(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewStoreWithoutProject(t *testing.T) {
	s, err := NewStore(context.Background(), Config{})
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestNewStoreDefaults(t *testing.T) {
	s := newStore(nil, Config{})
	assert.Equal(t, DefaultCollection, s.collection)
	assert.Equal(t, DefaultMaxAttempts, s.maxAttempts)
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.Get(ctx, "a")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, s.Create(ctx, "a", []byte("1")))
	assert.True(t, errors.Is(s.Create(ctx, "a", []byte("2")), store.ErrAlreadyExists))
	require.NoError(t, s.Create(ctx, "poll_a", []byte("2")))

	b, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), b)

	keys, err := s.List(ctx, "poll_")
	require.NoError(t, err)
	assert.Equal(t, []string{"poll_a"}, keys)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStoreRunTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := setupTestStore(t)
		err := s.RunTransaction(ctx, func(tx store.KVTx) error {
			_, err := tx.Get("missing")
			return err
		})
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("concurrent votes are not lost", func(t *testing.T) {
		s := setupTestStore(t)
		polls := store.NewStore(s).Poll()

		p := testutils.GetPollWithSettings(poll.Settings{Multiple: true, MaxVotes: 3})
		require.NoError(t, polls.Insert(ctx, p))

		users := []string{"userA", "userB", "userC", "userD"}
		var wg sync.WaitGroup
		for _, userID := range users {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				err := polls.RunTransaction(ctx, func(tx store.PollTx) error {
					current, err := tx.Get(p.ID)
					if err != nil {
						return err
					}
					votes, _, voteErr := current.NextVotes(poll.Vote{UserID: userID, OptionID: "1"})
					if voteErr != nil {
						return voteErr
					}
					return tx.Update(p.ID, poll.Patch{Votes: votes})
				})
				assert.NoError(t, err)
			}(userID)
		}
		wg.Wait()

		rpoll, err := polls.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, users, rpoll.GetVoters("1"))
	})
}
