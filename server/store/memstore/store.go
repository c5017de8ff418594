// Package memstore implements store.KV in memory. It is meant for tests and local development.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/store"
)

// DefaultMaxAttempts is the number of times a transaction is tried before giving up.
const DefaultMaxAttempts = 25

var _ store.KV = (*Store)(nil)

type entry struct {
	value   []byte
	version uint64
}

// Store keeps versioned values in a map. Transactions run without holding the lock
// and commit only if none of the keys they read changed in the meantime.
type Store struct {
	mu          sync.Mutex
	entries     map[string]entry
	maxAttempts int
	// clock increases with every write and provides the versions of the entries.
	clock uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entries:     map[string]entry{},
		maxAttempts: DefaultMaxAttempts,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyBytes(e.value), nil
}

func (s *Store) Create(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return store.ErrAlreadyExists
	}
	s.clock++
	s.entries[key] = entry{value: copyBytes(value), version: s.clock}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// List returns the keys with the given prefix in lexical order.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := []string{}
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.KVTx) error) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "transaction aborted")
		}
		tx := &transaction{
			store:  s,
			reads:  map[string]uint64{},
			values: map[string][]byte{},
			writes: map[string][]byte{},
		}
		if err := fn(tx); err != nil {
			return err
		}
		if s.commit(tx) {
			return nil
		}
	}
	return store.ErrTransactionConflict
}

// commit applies the writes of tx if every key it read still has the version it had when read.
func (s *Store) commit(tx *transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, version := range tx.reads {
		if s.entries[key].version != version {
			return false
		}
	}
	for key, value := range tx.writes {
		s.clock++
		s.entries[key] = entry{value: value, version: s.clock}
	}
	return true
}

func (s *Store) read(key string) ([]byte, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[key]
	return copyBytes(e.value), e.version
}

type transaction struct {
	store *Store
	// reads holds the version of every key read. 0 means the key did not exist.
	reads  map[string]uint64
	values map[string][]byte
	writes map[string][]byte
}

func (t *transaction) get(key string) []byte {
	if b, ok := t.writes[key]; ok {
		return b
	}
	if _, ok := t.reads[key]; ok {
		return t.values[key]
	}
	b, version := t.store.read(key)
	t.reads[key] = version
	t.values[key] = b
	return b
}

func (t *transaction) Get(key string) ([]byte, error) {
	b := t.get(key)
	if b == nil {
		return nil, store.ErrNotFound
	}
	return copyBytes(b), nil
}

func (t *transaction) Set(key string, value []byte) error {
	t.get(key)
	t.writes[key] = copyBytes(value)
	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
