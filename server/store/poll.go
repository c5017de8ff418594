package store

import (
	"context"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/poll"
)

// PollPrefix is the key prefix of all polls.
const PollPrefix = "poll_"

type pollStore struct {
	kv KV
}

func pollKey(id string) string {
	return PollPrefix + id
}

func decode(b []byte) (*poll.Poll, error) {
	p := poll.DecodePollFromByte(b)
	if p == nil {
		return nil, errors.New("failed to decode poll")
	}
	return p, nil
}

func (s *pollStore) Get(ctx context.Context, id string) (*poll.Poll, error) {
	b, err := s.kv.Get(ctx, pollKey(id))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get poll %s", id)
	}
	return decode(b)
}

func (s *pollStore) Insert(ctx context.Context, p *poll.Poll) error {
	p.ID = model.NewId()
	if err := s.kv.Create(ctx, pollKey(p.ID), p.EncodeToByte()); err != nil {
		return errors.Wrap(err, "failed to insert poll")
	}
	return nil
}

func (s *pollStore) Delete(ctx context.Context, id string) error {
	if _, err := s.kv.Get(ctx, pollKey(id)); err != nil {
		return errors.Wrapf(err, "failed to get poll %s", id)
	}
	if err := s.kv.Delete(ctx, pollKey(id)); err != nil {
		return errors.Wrapf(err, "failed to delete poll %s", id)
	}
	return nil
}

// List returns all polls. Polls deleted while listing are skipped.
func (s *pollStore) List(ctx context.Context) ([]*poll.Poll, error) {
	keys, err := s.kv.List(ctx, PollPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list polls")
	}

	polls := make([]*poll.Poll, 0, len(keys))
	for _, key := range keys {
		b, err := s.kv.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get %s", key)
		}
		p, err := decode(b)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, nil
}

func (s *pollStore) RunTransaction(ctx context.Context, fn func(tx PollTx) error) error {
	return s.kv.RunTransaction(ctx, func(tx KVTx) error {
		return fn(&pollTx{tx: tx, polls: map[string]*poll.Poll{}})
	})
}

// pollTx keeps the polls read in one attempt so that updates build on them.
type pollTx struct {
	tx    KVTx
	polls map[string]*poll.Poll
}

func (t *pollTx) Get(id string) (*poll.Poll, error) {
	if p, ok := t.polls[id]; ok {
		return p.Copy(), nil
	}
	b, err := t.tx.Get(pollKey(id))
	if err != nil {
		return nil, err
	}
	p, err := decode(b)
	if err != nil {
		return nil, err
	}
	t.polls[id] = p
	return p.Copy(), nil
}

func (t *pollTx) Update(id string, patch poll.Patch) error {
	if _, err := t.Get(id); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	p := t.polls[id]
	patch.Apply(p)
	return t.tx.Set(pollKey(id), p.EncodeToByte())
}
