package models

import "time"

// User is a staff account able to use the authenticated API
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);not null;uniqueIndex" validate:"required,max=150"`
	Email        string    `json:"email" gorm:"type:varchar(254)" validate:"omitempty,email,max=254"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150)" validate:"max=150"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"not null"`
	DateJoined   time.Time `json:"date_joined" gorm:"autoCreateTime"`
	Groups       []Group   `json:"groups" gorm:"many2many:user_groups;"`
}

// Group is a named set of users
type Group struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(150);not null;uniqueIndex" validate:"required,max=150"`
}
