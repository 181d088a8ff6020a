package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskz/internal/config"
	"github.com/yukikurage/taskz/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialector(driver, "dsn")
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector("oracle", "dsn")
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("silent"))
	assert.Equal(t, logger.Info, LogLevel("INFO"))
	assert.Equal(t, logger.Warn, LogLevel("unknown"))
}

func TestConnectAndMigrate(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db, zap.NewNop()))
	// running twice skips existing indexes
	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, model := range []interface{}{&models.Tenant{}, &models.User{}, &models.Task{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_tenant_created_at"))
}

func TestPaginate(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, db.Create(&models.Tenant{ID: name, Name: name}).Error)
	}

	var page []models.Tenant
	require.NoError(t, db.Scopes(Paginate(1, 2)).Order("name ASC").Find(&page).Error)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Name)

	var all []models.Tenant
	require.NoError(t, db.Scopes(Paginate(3, 0)).Find(&all).Error)
	assert.Len(t, all, 5)
}
