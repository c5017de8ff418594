package kvstore

import (
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/store"
)

type transaction struct {
	api plugin.API
	// reads holds the value of every key at the time it was first read. nil means the key did not exist.
	reads  map[string][]byte
	writes map[string][]byte
	order  []string
}

func newTransaction(api plugin.API) *transaction {
	return &transaction{
		api:    api,
		reads:  map[string][]byte{},
		writes: map[string][]byte{},
	}
}

func (t *transaction) read(key string) ([]byte, error) {
	if b, ok := t.reads[key]; ok {
		return b, nil
	}
	b, appErr := t.api.KVGet(key)
	if appErr != nil {
		return nil, errors.Wrapf(appErr, "failed to get key %s", key)
	}
	t.reads[key] = b
	return b, nil
}

func (t *transaction) Get(key string) ([]byte, error) {
	if b, ok := t.writes[key]; ok {
		return b, nil
	}
	b, err := t.read(key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (t *transaction) Set(key string, value []byte) error {
	// The old value is needed for the compare and set on commit.
	if _, err := t.read(key); err != nil {
		return err
	}
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = value
	return nil
}

// commit writes all buffered values. It returns false if a key was changed by someone else.
func (t *transaction) commit() (bool, error) {
	for _, key := range t.order {
		ok, appErr := t.api.KVSetWithOptions(key, t.writes[key], model.PluginKVSetOptions{
			Atomic:   true,
			OldValue: t.reads[key],
		})
		if appErr != nil {
			return false, errors.Wrapf(appErr, "failed to set key %s", key)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
