package tasks

import (
	"time"

	"gorm.io/gorm"
)

type TaskList struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	FamilyID  string         `gorm:"type:uuid;index;not null"`
	Title     string         `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Task struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	ListID     string         `gorm:"type:uuid;index;not null"`
	Title      string         `gorm:"not null"`
	AssigneeID *string        `gorm:"type:uuid;column:assignee_id"`
	Done       bool           `gorm:"not null;default:false"`
	DoneAt     *time.Time     `gorm:"column:done_at"`
	DoneByID   *string        `gorm:"type:uuid;column:done_by_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

type ListCounts struct {
	Total int64
	Done  int64
}

type ListWithCounts struct {
	List   TaskList
	Counts ListCounts
}

type CreateTaskInput struct {
	ListID     string
	Title      string
	AssigneeID *string
}

type UpdateTaskInput struct {
	ID         string
	FamilyID   string
	Title      *string
	AssigneeID *string
	Done       *bool
	// DoneBy attributes completion when Done flips to true.
	DoneBy string
}
