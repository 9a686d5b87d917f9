package models

import "time"

// Contact is a message submitted through the contact form
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null" validate:"required,email,max=254"`
	Subject   string    `json:"subject" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Message   string    `json:"message" gorm:"type:text;not null" validate:"required,max=5000"`
	CreatedAt time.Time `json:"created_at"`
}
