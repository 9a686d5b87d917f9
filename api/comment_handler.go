package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  *content.CommentService
}

func newCommentHandler(comments *content.CommentService) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()
	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		comments:  comments,
	}
}

// listPostComments returns the comments of one post, newest first
// @Summary List post comments
// @Tags Comments
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {array} models.Comment
// @Router /posts/{postID}/comments [get]
func (h commentHandler) listPostComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		comments, err := h.comments.List(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comments)
	}
}

// createPostComment adds a comment to the post in the path. A post id in the
// body is ignored.
// @Summary Comment on a post
// @Tags Comments
// @Accept json
// @Produce json
// @Param postID path int true "Post ID"
// @Param comment body models.Comment true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid comment"
// @Failure 404 {object} ErrorResponse "Not Found - Post not found"
// @Router /posts/{postID}/comments [post]
func (h commentHandler) createPostComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.create(w, r, postID)
	}
}

// createComment adds a comment to the post named in the body.
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.create(w, r, 0)
	}
}

func (h commentHandler) create(w http.ResponseWriter, r *http.Request, postID uint) {
	var in models.Comment
	if err := decodeJSON(w, r, &in); err != nil {
		h.responder.WriteError(w, err)
		return
	}
	if postID == 0 {
		postID = in.PostID
	}
	if postID == 0 {
		h.responder.WriteError(w, errs.NewFieldError("post", "This field is required."))
		return
	}

	comment, err := h.comments.Submit(r.Context(), postID, in)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSONStatus(w, http.StatusCreated, comment)
}
