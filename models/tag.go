package models

// Tag is a free-form label attached to posts
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);not null;uniqueIndex" validate:"required,max=100"`
}
