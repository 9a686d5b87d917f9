package content

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

// CommentStore persists comments.
type CommentStore interface {
	Add(ctx context.Context, c *models.Comment) error
	FindByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

// CommentService accepts visitor comments on visible posts.
type CommentService struct {
	comments CommentStore
	posts    *Service
	strict   *bluemonday.Policy
}

func NewCommentService(comments CommentStore, posts *Service) *CommentService {
	return &CommentService{comments: comments, posts: posts, strict: bluemonday.StrictPolicy()}
}

// Submit stores a comment on postID. The post id from the caller's route always
// replaces whatever the input carries.
func (s *CommentService) Submit(ctx context.Context, postID uint, in models.Comment) (*models.Comment, error) {
	if _, err := s.posts.GetVisible(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:  postID,
		Name:    s.clean(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Content: s.clean(in.Content),
	}
	if err := models.Validate(comment); err != nil {
		return nil, err
	}

	if err := s.comments.Add(ctx, &comment); err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	return &comment, nil
}

// List returns the comments of a post, newest first.
func (s *CommentService) List(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.comments.FindByPost(ctx, postID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}
	return comments, nil
}

func (s *CommentService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(text)))
}
