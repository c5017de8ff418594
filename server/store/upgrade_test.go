package store_test

import (
	"context"
	"testing"

	"github.com/mattermost/mattermost-server/v6/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profiq/open-poll/server/store"
)

func TestUpdateDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh install", func(t *testing.T) {
		s, _ := setupTestStore(t)
		api := &plugintest.API{}
		api.On("LogInfo", mock.AnythingOfType("string"), "version", "1.2.0")
		defer api.AssertExpectations(t)

		require.NoError(t, store.UpdateDatabase(ctx, s, "1.2.3", api))

		v, err := s.System().GetVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", v)
	})

	t.Run("version already stored", func(t *testing.T) {
		s, _ := setupTestStore(t)
		require.NoError(t, s.System().SaveVersion(ctx, "1.2.0"))
		api := &plugintest.API{}
		defer api.AssertExpectations(t)

		require.NoError(t, store.UpdateDatabase(ctx, s, "1.2.5", api))
	})

	t.Run("newer schema", func(t *testing.T) {
		s, _ := setupTestStore(t)
		require.NoError(t, s.System().SaveVersion(ctx, "2.0.0"))
		api := &plugintest.API{}
		api.On("LogWarn", mock.AnythingOfType("string"), "schema", "2.0.0", "plugin", "1.2.0")
		defer api.AssertExpectations(t)

		require.NoError(t, store.UpdateDatabase(ctx, s, "1.2.0", api))
	})

	t.Run("invalid plugin version", func(t *testing.T) {
		s, _ := setupTestStore(t)
		api := &plugintest.API{}
		assert.Error(t, store.UpdateDatabase(ctx, s, "not a version", api))
	})
}
