package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/orderrelay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestDialect(t *testing.T) {
	for _, dbType := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialect(config.Config{DBType: dbType, DBPath: "orders.db"})
		require.NoError(t, err, dbType)
		assert.Equal(t, dbType, d.Name())
	}

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.EqualError(t, err, "unsupported oracle type")
}

func TestNewSkipsWhenFileStore(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	conn, err := New(Params{Lc: lc, Cfg: config.Config{OrderStore: config.StoreFile}, Log: zap.NewNop()})

	require.NoError(t, err)
	assert.Nil(t, conn)
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	_, err := New(Params{Lc: lc, Cfg: config.Config{OrderStore: config.StoreSQL, DBType: "oracle"}, Log: zap.NewNop()})

	assert.Error(t, err)
}

func TestOpenAppliesPool(t *testing.T) {
	dsn := fmt.Sprintf("file:%s", filepath.Join(t.TempDir(), "orders.db"))
	conn, err := Open(sqlite.Open(dsn), config.Config{DBMaxOpenConn: 3, DBMaxIdleConn: 1}, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.PingContext(context.Background()))
}

type uniqueRow struct {
	ID string `gorm:"primaryKey"`
}

func TestIsDuplicateKeyErr(t *testing.T) {
	dsn := fmt.Sprintf("file:%s", filepath.Join(t.TempDir(), "dup.db"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&uniqueRow{}))

	require.NoError(t, conn.Create(&uniqueRow{ID: "ORDER_1"}).Error)
	err = conn.Create(&uniqueRow{ID: "ORDER_1"}).Error

	assert.True(t, IsDuplicateKeyErr(err))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
	assert.False(t, IsDuplicateKeyErr(nil))
}
