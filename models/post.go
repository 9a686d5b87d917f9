package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the editorial status of a post. Only active posts can be publicly visible.
type PostStatus string

const (
	StatusActive   PostStatus = "active"
	StatusInactive PostStatus = "in_active"
)

// Post represents a news article
type Post struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Content       string         `json:"content" gorm:"type:text;not null" validate:"required"`
	FeaturedImage string         `json:"featured_image" gorm:"type:varchar(500)" validate:"max=500"`
	ViewsCount    uint           `json:"views_count" gorm:"not null;default:0"`
	Status        PostStatus     `json:"status" gorm:"type:varchar(20);not null;default:active;index:idx_post_visibility,priority:1" validate:"required,oneof=active in_active"`
	PublishedAt   *time.Time     `json:"published_at" gorm:"index:idx_post_visibility,priority:2"`
	AuthorID      uint           `json:"author" gorm:"not null;index"`
	TagID         *uint          `json:"tag" gorm:"index"`
	CategoryID    uint           `json:"category" gorm:"not null;index" validate:"required"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Tag      *Tag      `json:"tag_detail,omitempty" gorm:"foreignKey:TagID;references:ID"`
	Category *Category `json:"category_detail,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
}

// IsPublished reports whether the post has a publication timestamp.
func (p Post) IsPublished() bool {
	return p.PublishedAt != nil
}
