package models

import "time"

// Comment is a visitor comment on a post. Comments are never edited once stored.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post" gorm:"not null;index" validate:"required"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null" validate:"required,email,max=254"`
	Content   string    `json:"content" gorm:"type:text;not null" validate:"required,max=5000"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
