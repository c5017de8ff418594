package mockstore

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/store"
)

// PollStore is a mock of store.PollStore.
type PollStore struct {
	mock.Mock
}

func (_m *PollStore) Get(ctx context.Context, id string) (*poll.Poll, error) {
	ret := _m.Called(ctx, id)
	var r0 *poll.Poll
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*poll.Poll)
	}
	return r0, ret.Error(1)
}

func (_m *PollStore) Insert(ctx context.Context, p *poll.Poll) error {
	ret := _m.Called(ctx, p)
	return ret.Error(0)
}

func (_m *PollStore) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *PollStore) List(ctx context.Context) ([]*poll.Poll, error) {
	ret := _m.Called(ctx)
	var r0 []*poll.Poll
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*poll.Poll)
	}
	return r0, ret.Error(1)
}

// RunTransaction calls fn with the PollTx given to Return, or fails with the error given to Return.
//
//	s.On("RunTransaction", mock.Anything, mock.Anything).Return(tx, nil)
func (_m *PollStore) RunTransaction(ctx context.Context, fn func(tx store.PollTx) error) error {
	ret := _m.Called(ctx, fn)
	if err := ret.Error(1); err != nil {
		return err
	}
	return fn(ret.Get(0).(store.PollTx))
}

// PollTx is a mock of store.PollTx.
type PollTx struct {
	mock.Mock
}

func (_m *PollTx) Get(id string) (*poll.Poll, error) {
	ret := _m.Called(id)
	var r0 *poll.Poll
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*poll.Poll)
	}
	return r0, ret.Error(1)
}

func (_m *PollTx) Update(id string, patch poll.Patch) error {
	ret := _m.Called(id, patch)
	return ret.Error(0)
}
