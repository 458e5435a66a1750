package model

import "time"

// Task is a definition, not an instance. A recurring task implies an
// unbounded series of calendar-date occurrences; per-occurrence state
// lives in TaskCompletion and HiddenDate rows, never here.
//
// TimeSpent, LastStart, Completed and CompletedAt are authoritative only
// for non-recurring tasks. Calendar dates are stored as YYYY-MM-DD
// strings, matching the wire format.
type Task struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	Notes              string     `json:"notes"`
	ProjectID          *uint      `gorm:"index" json:"project_id"`
	IsRecurring        bool       `gorm:"default:false" json:"is_recurring"`
	RecurrenceType     string     `json:"recurrence_type"`
	RecurrenceInterval int        `gorm:"default:1" json:"recurrence_interval"`
	StartDate          string     `gorm:"size:10" json:"start_date"`
	EndDate            string     `gorm:"size:10" json:"end_date"`
	TimeSpent          int64      `gorm:"default:0" json:"time_spent"`
	LastStart          *time.Time `json:"last_start"`
	Completed          bool       `gorm:"default:false" json:"completed"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Completions []TaskCompletion `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	HiddenDates []HiddenDate     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}
