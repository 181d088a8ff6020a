package repository

import (
	"context"

	"github.com/yukikurage/taskz/internal/database"
	"github.com/yukikurage/taskz/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks matching the filter
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if !filter.All {
		if filter.TenantID == "" && filter.Email == "" {
			return tasks, nil
		}
		if filter.TenantID != "" {
			query = query.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Email != "" {
			email := models.NormalizeEmail(filter.Email)
			query = query.Where("(created_by = ? OR assigned_to = ?)", email, email)
		}
	}

	if err := query.
		Scopes(database.Paginate(filter.Page.Offset, filter.Page.Limit)).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update saves a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}).Error
}

// RenameEmail rewrites created_by and assigned_to references from one email to
// another. The tasks' updated_at is left alone.
func (r *GormTaskRepository) RenameEmail(ctx context.Context, from, to string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Task{}).
		Where("created_by = ?", from).
		UpdateColumn("created_by", to).Error; err != nil {
		return err
	}
	return db.Model(&models.Task{}).
		Where("assigned_to = ?", from).
		UpdateColumn("assigned_to", to).Error
}
