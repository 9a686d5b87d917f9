package api

import (
	"context"
	"time"

	"github.com/rpupo63/newsroom-backend/models"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time, mediaPrefix string, maxUpload int64) *routeHandlers {
	db := deps.Database
	invalidate := deps.Posts.Invalidate
	noop := func(context.Context) {}

	return &routeHandlers{
		postHandler:    newPostHandler(db, deps.Posts, deps.Media, mediaPrefix, maxUpload),
		commentHandler: newCommentHandler(deps.Comments),
		categoryHandler: newCRUDHandler("category", db.CategoryRepo(),
			func(c *models.Category, id uint) { c.ID = id }, invalidate),
		tagHandler: newCRUDHandler("tag", db.TagRepo(),
			func(t *models.Tag, id uint) { t.ID = id }, invalidate),
		groupHandler: newCRUDHandler("group", db.GroupRepo(),
			func(g *models.Group, id uint) { g.ID = id }, noop),
		contactHandler: newCRUDHandler("contact", db.ContactRepo(),
			func(c *models.Contact, id uint) { c.ID = id }, noop),
		newsletterHandler: newCRUDHandler("newsletter", db.NewsletterRepo(),
			func(n *models.Newsletter, id uint) { n.ID = id }, noop),
		commentAdminHandler: newCRUDHandler("comment", db.CommentRepo().Repo,
			func(c *models.Comment, id uint) { c.ID = id }, noop),
		submissionHandler: newSubmissionHandler(deps.Submissions),
		userHandler:       newUserHandler(db.UserRepo()),
		authHandler:       newAuthHandler(deps.Authenticator),
		healthHandler:     newHealthHandler(db, startupTime),
	}
}
