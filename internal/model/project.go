package model

import "time"

// Project groups tasks under an optional client. Deleting the client
// clears the reference, it never removes the project.
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  *uint     `gorm:"index" json:"client_id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tasks     []Task    `gorm:"foreignKey:ProjectID" json:"-"`
}
