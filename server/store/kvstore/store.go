// Package kvstore implements store.KV on top of the Mattermost plugin key value store.
package kvstore

import (
	"context"
	"strings"
	"time"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/store"
)

const (
	// DefaultMaxAttempts is the number of times a transaction is tried before giving up.
	DefaultMaxAttempts = 5

	listPerPage = 100
	baseBackoff = 10 * time.Millisecond
)

var _ store.KV = (*Store)(nil)

// Store is a store.KV backed by the plugin KV store.
type Store struct {
	api         plugin.API
	maxAttempts int
	backoff     time.Duration
}

// NewStore creates a KV store. maxAttempts < 1 falls back to DefaultMaxAttempts.
func NewStore(api plugin.API, maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Store{
		api:         api,
		maxAttempts: maxAttempts,
		backoff:     baseBackoff,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	b, appErr := s.api.KVGet(key)
	if appErr != nil {
		return nil, errors.Wrapf(appErr, "failed to get key %s", key)
	}
	if b == nil {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) Create(_ context.Context, key string, value []byte) error {
	ok, appErr := s.api.KVSetWithOptions(key, value, model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: nil,
	})
	if appErr != nil {
		return errors.Wrapf(appErr, "failed to create key %s", key)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if appErr := s.api.KVDelete(key); appErr != nil {
		return errors.Wrapf(appErr, "failed to delete key %s", key)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageKeys, appErr := s.api.KVList(page, listPerPage)
		if appErr != nil {
			return nil, errors.Wrapf(appErr, "failed to list keys on page %d", page)
		}
		for _, key := range pageKeys {
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		if len(pageKeys) < listPerPage {
			return keys, nil
		}
	}
}

// RunTransaction runs fn against a snapshot of the keys it reads and commits every write with an atomic
// compare and set against the value read. If another writer changed a key in between, fn is rerun on
// fresh values. Writes to different keys are committed one after another.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.KVTx) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "transaction aborted")
		}

		tx := newTransaction(s.api)
		if err := fn(tx); err != nil {
			return err
		}
		committed, err := tx.commit()
		if err != nil {
			return err
		}
		if committed {
			return nil
		}

		s.api.LogDebug("Transaction conflict, retrying", "attempt", attempt, "maxAttempts", s.maxAttempts)
		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "transaction aborted")
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
	return store.ErrTransactionConflict
}
