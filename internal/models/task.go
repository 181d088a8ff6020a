package models

import "time"

// Task is a unit of work. AssignedTo holds a lowercased email under the role
// strategy and a user id under the tenant strategy. CreatedBy is always the
// creator's lowercased email.
type Task struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `gorm:"index" json:"start_date"`
	DueDate     *time.Time `gorm:"index" json:"due_date"`
	Priority    string     `gorm:"type:varchar(50);index" json:"priority"`
	Status      string     `gorm:"type:varchar(50);index" json:"status"`
	AssignedTo  string     `gorm:"type:varchar(255);index" json:"assigned_to"`
	CreatedBy   string     `gorm:"type:varchar(255);index" json:"created_by"`
	TenantID    *string    `gorm:"type:varchar(36);index" json:"tenant_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
