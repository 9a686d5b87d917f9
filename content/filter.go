// Package content holds the query and publication rules shared by the web pages
// and the REST API. The visibility rule lives here and nowhere else.
package content

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/models"
)

// IsVisible reports whether the public may see p: it must be active and published.
func IsVisible(p models.Post) bool {
	return p.Status == models.StatusActive && p.PublishedAt != nil
}

// Visible is IsVisible expressed as a query scope.
func Visible(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND published_at IS NOT NULL", models.StatusActive)
}

// Drafts selects posts without a publication timestamp, whatever their status.
func Drafts(db *gorm.DB) *gorm.DB {
	return db.Where("published_at IS NULL")
}

func InCategory(categoryID uint) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id = ?", categoryID)
	}
}

func WithTag(tagID uint) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tag_id = ?", tagID)
	}
}

// PublishedSince keeps posts published at or after t.
func PublishedSince(t time.Time) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("published_at >= ?", t)
	}
}

// Matching is a case-insensitive substring match over title or content.
func Matching(query string) database.Scope {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		lower := database.LowerFunc(db)
		return db.Where(
			fmt.Sprintf("(%[1]s(title) LIKE ? ESCAPE '\\' OR %[1]s(content) LIKE ? ESCAPE '\\')", lower),
			pattern, pattern,
		)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func IDBefore(id uint) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id < ?", id).Order("id DESC")
	}
}

func IDAfter(id uint) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id > ?", id).Order("id ASC")
	}
}

// Newest orders by publication time, newest first.
func Newest(db *gorm.DB) *gorm.DB {
	return db.Order("published_at DESC").Order("id DESC")
}

// NewestThenMostViewed breaks publication-time ties by views.
func NewestThenMostViewed(db *gorm.DB) *gorm.DB {
	return db.Order("published_at DESC").Order("views_count DESC").Order("id DESC")
}

// ByID orders by id, newest first.
func ByID(db *gorm.DB) *gorm.DB {
	return db.Order("id DESC")
}

func Limit(n int) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}

func window(offset, limit int) database.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
