package store

import (
	"context"

	"github.com/pkg/errors"
)

const versionKey = "version"

type systemStore struct {
	kv KV
}

// GetVersion returns the db schema version or an empty string if none is stored.
func (s *systemStore) GetVersion(ctx context.Context) (string, error) {
	b, err := s.kv.Get(ctx, versionKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get version")
	}
	return string(b), nil
}

// SaveVersion sets the db schema version.
func (s *systemStore) SaveVersion(ctx context.Context, version string) error {
	err := s.kv.RunTransaction(ctx, func(tx KVTx) error {
		return tx.Set(versionKey, []byte(version))
	})
	if err != nil {
		return errors.Wrap(err, "failed to save version")
	}
	return nil
}
