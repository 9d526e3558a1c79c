package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID            string     `gorm:"primaryKey;size:36" json:"_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Assignee      string     `gorm:"size:36;index" json:"assignee"`
	AssigneeName  string     `json:"assigneeName"`  // snapshot at creation
	AssigneeEmail string     `json:"assigneeEmail"` // snapshot at creation
	Avatar        string     `json:"avatar"`
	WorkspaceName string     `gorm:"not null;index" json:"workspaceName"`
	DueDate       *time.Time `json:"dueDate"`
	Priority      string     `json:"priority"`
	Status        string     `gorm:"not null;default:Pending" json:"status"`
	CreatedBy     string     `gorm:"size:36;index" json:"createdBy"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
