package models

import "time"

// Newsletter is a newsletter subscription
type Newsletter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null;uniqueIndex" validate:"required,email,max=254"`
	CreatedAt time.Time `json:"created_at"`
}
