package model

import "time"

// TaskCompletion is the per-occurrence state of a recurring task: one row
// per (task, calendar date) that has ever been started or completed.
// Absence of a row means zero time spent and not completed; rows are
// created lazily, never ahead of time.
type TaskCompletion struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	TaskID         uint       `gorm:"not null;uniqueIndex:idx_task_completion_date" json:"task_id"`
	CompletionDate string     `gorm:"size:10;not null;uniqueIndex:idx_task_completion_date" json:"completion_date"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completed_at"`
	TimeSpent      int64      `gorm:"default:0" json:"time_spent"`
	LastStart      *time.Time `json:"last_start"`
	CreatedAt      time.Time  `json:"created_at"`
}
