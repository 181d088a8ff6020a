package database

import (
	"fmt"

	"github.com/yukikurage/taskz/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables and the indexes the list queries rely on.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Task{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}

// compositeIndex is an index that cannot be expressed with a single field tag.
type compositeIndex struct {
	model   interface{}
	name    string
	columns string
}

var compositeIndexes = []compositeIndex{
	{&models.Task{}, "idx_tasks_tenant_created_at", "tenant_id, created_at"},
	{&models.User{}, "idx_users_tenant_email", "tenant_id, email"},
}

// AddIndexes creates missing composite indexes. Existing ones are skipped.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()
	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Info("Created index", zap.String("index", idx.name), zap.String("table", stmt.Schema.Table))
	}
	return nil
}
