// Package store defines how polls are persisted.
//
// Backends only implement KV, a small transactional key value capability.
// Polls and system information are stored on top of it by NewStore.
package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/poll"
)

var (
	// ErrNotFound is returned when a key or poll does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a key that exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrTransactionConflict is returned when a transaction lost every attempt against concurrent writers.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// Logger is the subset of the plugin API used for logging.
type Logger interface {
	LogDebug(msg string, keyValuePairs ...interface{})
	LogInfo(msg string, keyValuePairs ...interface{})
	LogWarn(msg string, keyValuePairs ...interface{})
	LogError(msg string, keyValuePairs ...interface{})
}

// KV is a key value store with optimistic transactions.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Create stores a new key. It returns ErrAlreadyExists if the key is taken.
	Create(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List returns all keys with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// RunTransaction runs fn and commits its writes atomically.
	// fn may be called more than once and must not have side effects outside of tx.
	RunTransaction(ctx context.Context, fn func(tx KVTx) error) error
}

// KVTx is the view of a KV inside a transaction. Writes are buffered until fn returns without an error.
type KVTx interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Store gives access to all stores.
type Store interface {
	Poll() PollStore
	System() SystemStore
}

// PollStore allows to access polls.
type PollStore interface {
	Get(ctx context.Context, id string) (*poll.Poll, error)
	// Insert assigns a new ID to the poll and stores it.
	Insert(ctx context.Context, p *poll.Poll) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*poll.Poll, error)
	// RunTransaction reads and updates polls atomically. fn may be retried and must be free of side effects.
	RunTransaction(ctx context.Context, fn func(tx PollTx) error) error
}

// PollTx reads and updates polls inside a transaction.
type PollTx interface {
	Get(id string) (*poll.Poll, error)
	Update(id string, patch poll.Patch) error
}

// SystemStore allows to access system information.
type SystemStore interface {
	GetVersion(ctx context.Context) (string, error)
	SaveVersion(ctx context.Context, version string) error
}

type kvBackedStore struct {
	pollStore   *pollStore
	systemStore *systemStore
}

// NewStore composes the poll and system stores on top of a KV backend.
func NewStore(kv KV) Store {
	return &kvBackedStore{
		pollStore:   &pollStore{kv: kv},
		systemStore: &systemStore{kv: kv},
	}
}

func (s *kvBackedStore) Poll() PollStore     { return s.pollStore }
func (s *kvBackedStore) System() SystemStore { return s.systemStore }
