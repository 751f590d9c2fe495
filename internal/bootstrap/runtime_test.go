package bootstrap

import (
	"context"
	"testing"

	"litreview/internal/config"
	"litreview/internal/models"
	"litreview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()

	t.Run("skipped outside development", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		require.NoError(t, seedDemo(ctx, &config.Config{Env: "production"}, db))

		var users int64
		require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
		assert.Zero(t, users)
	})

	t.Run("seeds empty development database", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		require.NoError(t, seedDemo(ctx, &config.Config{Env: "development"}, db))

		var users, tickets int64
		require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
		require.NoError(t, db.Model(&models.Ticket{}).Count(&tickets).Error)
		assert.Equal(t, int64(20), users)
		assert.Equal(t, int64(80), tickets)
	})

	t.Run("leaves populated database alone", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		testutil.CreateUser(t, db, "alice")
		require.NoError(t, seedDemo(ctx, &config.Config{Env: "Development"}, db))

		var users int64
		require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
		assert.Equal(t, int64(1), users)
	})
}
