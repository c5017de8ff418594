package mockstore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// SystemStore is a mock of store.SystemStore.
type SystemStore struct {
	mock.Mock
}

func (_m *SystemStore) GetVersion(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func (_m *SystemStore) SaveVersion(ctx context.Context, version string) error {
	ret := _m.Called(ctx, version)
	return ret.Error(0)
}
