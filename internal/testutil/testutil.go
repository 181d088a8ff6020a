// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskz/internal/database"
	"github.com/yukikurage/taskz/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plaintext password of every fixture user.
const Password = "password123"

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends. A single connection keeps every query on the same database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

// CreateTenant inserts a tenant.
func CreateTenant(t *testing.T, db *gorm.DB, id, name string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{ID: id, Name: name}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, id, email string, role models.Role, tenantID *string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           id,
		Email:        models.NormalizeEmail(email),
		Name:         id,
		PasswordHash: string(hash),
		TenantID:     tenantID,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask inserts a task.
func CreateTask(t *testing.T, db *gorm.DB, task models.Task) *models.Task {
	t.Helper()
	require.NoError(t, db.Create(&task).Error)
	return &task
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
