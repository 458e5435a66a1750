package model

import "time"

// HiddenDate suppresses a single occurrence of a recurring task without
// touching the recurrence rule or its end date. Once hidden, the date
// never shows again for that task.
type HiddenDate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"not null;uniqueIndex:idx_task_hidden_date" json:"task_id"`
	HiddenDate string    `gorm:"size:10;not null;uniqueIndex:idx_task_hidden_date" json:"hidden_date"`
	CreatedAt  time.Time `json:"created_at"`
}
