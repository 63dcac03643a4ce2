package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/coachflow/config"
)

func openTestPool(t *testing.T) *PoolManager {
	t.Helper()

	cfg := config.DefaultDatabaseConfig()
	cfg.DSN = "file::memory:?cache=shared"

	pm, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pm.Close() })
	return pm
}

func TestOpen_SQLiteInMemory(t *testing.T) {
	pm := openTestPool(t)

	assert.NotNil(t, pm.DB())
	assert.NoError(t, pm.Ping(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestPoolManager_ClosedPing(t *testing.T) {
	pm := openTestPool(t)
	require.NoError(t, pm.Close())

	assert.Error(t, pm.Ping(context.Background()))
	// Double close is a no-op.
	assert.NoError(t, pm.Close())
}

func TestWithTransaction(t *testing.T) {
	pm := openTestPool(t)
	ctx := context.Background()

	type row struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}
	require.NoError(t, pm.DB().AutoMigrate(&row{}))

	require.NoError(t, pm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row{Name: "a"}).Error
	}))

	// A failing transaction rolls back.
	sentinel := errors.New("boom")
	err := pm.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&row{Name: "b"}).Error; err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var count int64
	require.NoError(t, pm.DB().Model(&row{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(errors.New("syntax error")))
	assert.True(t, isRetryableError(errors.New("pq: deadlock detected")))
	assert.True(t, isRetryableError(errors.New("ERROR: could not serialize access (SQLSTATE 40001)")))
	assert.True(t, isRetryableError(errors.New("driver: bad connection")))
}
