package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"go.uber.org/zap"
)

// TaskService handles task business logic
type TaskService struct {
	base
}

// NewTaskService creates a new TaskService
func NewTaskService(store *repository.Store, pol policy.Policy, logger *zap.Logger) *TaskService {
	return &TaskService{base{store: store, policy: pol, logger: logger}}
}

// TaskInput carries task fields. A nil field is left untouched on update and
// zero on create. CreatedBy is accepted but always replaced by the principal.
type TaskInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	DueDate     *time.Time
	Priority    *string
	Status      *string
	AssignedTo  *string
	CreatedBy   *string
}

// ListTasks returns the tasks visible to the principal
func (s *TaskService) ListTasks(ctx context.Context, p *models.User, page repository.Page) ([]models.Task, error) {
	scope := s.policy.TaskScope(p)
	if scope.Empty() {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		tasks, err = r.Tasks.List(ctx, scopeToTaskFilter(scope, page))
		if err != nil {
			return s.storeError("list tasks", err)
		}
		return nil
	})
	return tasks, err
}

// GetTask returns a task the principal may access
func (s *TaskService) GetTask(ctx context.Context, p *models.User, id string) (*models.Task, error) {
	var task *models.Task
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		task, err = s.loadTask(ctx, r, p, id)
		return err
	})
	return task, err
}

// CreateTask stamps ownership from the principal, validates the assignee as
// the active policy requires and persists the task under a fresh id.
func (s *TaskService) CreateTask(ctx context.Context, p *models.User, input TaskInput) (*models.Task, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}

	task := &models.Task{}
	applyTaskFields(task, input)

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		if input.AssignedTo != nil && *input.AssignedTo != "" {
			assignee := s.policy.Assignee(p, *input.AssignedTo, true)
			if err := s.checkAssignee(ctx, r, assignee); err != nil {
				return err
			}
			task.AssignedTo = assignee.Value
		}

		task.ID = uuid.NewString()
		s.policy.StampTask(p, task)

		if err := r.Tasks.Create(ctx, task); err != nil {
			return s.storeError("create task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the fields present in input. A rejected reassignment
// aborts the update before any field changes.
func (s *TaskService) UpdateTask(ctx context.Context, p *models.User, id string, input TaskInput) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}

	var task *models.Task
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		task, err = s.loadTask(ctx, r, p, id)
		if err != nil {
			return err
		}

		assignedTo := task.AssignedTo
		if input.AssignedTo != nil {
			assignedTo = ""
			if *input.AssignedTo != "" {
				assignee := s.policy.Assignee(p, *input.AssignedTo, false)
				if err := s.checkAssignee(ctx, r, assignee); err != nil {
					return err
				}
				assignedTo = assignee.Value
			}
		}

		applyTaskFields(task, input)
		task.AssignedTo = assignedTo

		if err := r.Tasks.Update(ctx, task); err != nil {
			return s.storeError("update task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task the principal may access
func (s *TaskService) DeleteTask(ctx context.Context, p *models.User, id string) error {
	return s.store.Transaction(ctx, func(r repository.Repositories) error {
		if _, err := s.loadTask(ctx, r, p, id); err != nil {
			return err
		}
		if err := r.Tasks.Delete(ctx, id); err != nil {
			return s.storeError("delete task", err)
		}
		return nil
	})
}

func (s *TaskService) loadTask(ctx context.Context, r repository.Repositories, p *models.User, id string) (*models.Task, error) {
	task, err := r.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError("find task", err, ErrTaskNotFound)
	}
	if err := decide(s.policy.TaskAccess(p, task), ErrTaskNotFound); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, r repository.Repositories, a policy.Assignee) error {
	if !a.Verify {
		return nil
	}

	var err error
	switch {
	case a.UserID != "" && a.TenantID != "":
		_, err = r.Users.FindInTenant(ctx, a.UserID, a.TenantID)
	case a.UserID != "":
		_, err = r.Users.FindByID(ctx, a.UserID)
	default:
		_, err = r.Users.FindByEmail(ctx, a.Email)
	}
	if err != nil {
		return s.lookupError("find assignee", err, ErrAssigneeNotFound)
	}
	return nil
}

// applyTaskFields copies the present fields except assignment and ownership.
func applyTaskFields(task *models.Task, input TaskInput) {
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.StartDate != nil {
		task.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
}
