package models

// Category groups posts by section (e.g. "Politics", "Sports")
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);not null;uniqueIndex" validate:"required,max=100"`
}
