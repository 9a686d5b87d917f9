package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/models"
)

type CommentRepo struct {
	*Repo[models.Comment]
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{NewRepo[models.Comment](db, "created_at DESC, id DESC")}
}

// FindByPost returns the comments of a post, newest first
func (r *CommentRepo) FindByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}
