package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/models"
)

type PostRepo struct {
	*Repo[models.Post]
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{NewRepo[models.Post](db, "id DESC", "Category", "Tag")}
}

// First returns the first post selected by scopes, or nil when there is none
func (r *PostRepo) First(ctx context.Context, scopes ...Scope) (*models.Post, error) {
	var posts []models.Post
	if err := r.query(ctx).Scopes(scopes...).Limit(1).Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// editableColumns are the post columns an edit may write. views_count and
// published_at only change through IncrementViews and SetPublishedAt.
var editableColumns = []string{"title", "content", "featured_image", "status", "category_id", "tag_id", "updated_at"}

// UpdateContent writes the editable columns of post, leaving concurrent view
// counts and publication stamps alone. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *PostRepo) UpdateContent(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select(editableColumns).
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementViews adds one to views_count in a single statement so concurrent
// readers never lose an increment. Returns gorm.ErrRecordNotFound for unknown ids.
func (r *PostRepo) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPublishedAt stamps the post as published at t.
// Returns gorm.ErrRecordNotFound for unknown ids.
func (r *PostRepo) SetPublishedAt(ctx context.Context, id uint, t time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("published_at", t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetFeaturedImage stores the media reference for a post's featured image
func (r *PostRepo) SetFeaturedImage(ctx context.Context, id uint, ref string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("featured_image", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
