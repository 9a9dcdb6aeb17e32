package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/orderrelay/internal/order/domain"
	"github.com/smallbiznis/orderrelay/internal/order/ordertest"
	"github.com/smallbiznis/orderrelay/internal/order/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s", filepath.Join(t.TempDir(), "seed.db"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestImportOrdersInsertsAndSkips(t *testing.T) {
	conn := openDB(t)
	ctx := context.Background()
	sample := ordertest.Sample()

	res, err := ImportOrders(ctx, conn, map[string]domain.Order{sample.ID: sample}, false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 1}, res)

	changed := sample
	changed.CustomerName = "Someone Else"
	res, err = ImportOrders(ctx, conn, map[string]domain.Order{sample.ID: changed}, false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, res)

	got, err := repository.NewSQL(conn).FindByID(ctx, sample.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sample.CustomerName, got.CustomerName)
	assert.Len(t, got.Items, len(sample.Items))
	assert.Len(t, got.PaymentMethods, len(sample.PaymentMethods))
}

func TestImportOrdersOverwrite(t *testing.T) {
	conn := openDB(t)
	ctx := context.Background()
	sample := ordertest.Sample()

	_, err := ImportOrders(ctx, conn, map[string]domain.Order{sample.ID: sample}, false, nil)
	require.NoError(t, err)

	changed := sample
	changed.Total = 750
	res, err := ImportOrders(ctx, conn, map[string]domain.Order{sample.ID: changed}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 1}, res)

	got, err := repository.NewSQL(conn).FindByID(ctx, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.0, got.Total)
}

func TestImportOrdersUsesMapKeyAsID(t *testing.T) {
	conn := openDB(t)
	order := ordertest.Sample()
	order.ID = ""

	res, err := ImportOrders(context.Background(), conn, map[string]domain.Order{
		" ORDER_777 ": order,
		"   ":         order,
	}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 1, Skipped: 1}, res)

	got, err := repository.NewSQL(conn).FindByID(context.Background(), "ORDER_777")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestImportFile(t *testing.T) {
	conn := openDB(t)

	res, err := ImportFile(context.Background(), conn, filepath.Join("..", "order", "testdata", "orders.json"), false, nil)
	require.NoError(t, err)
	assert.Positive(t, res.Inserted)

	_, err = ImportFile(context.Background(), conn, filepath.Join(t.TempDir(), "missing.json"), false, nil)
	assert.Error(t, err)
}

func TestImportOrdersRequiresDB(t *testing.T) {
	_, err := ImportOrders(context.Background(), nil, nil, false, nil)
	assert.Error(t, err)
}
