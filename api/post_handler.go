package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
	"github.com/rpupo63/newsroom-backend/storage"
)

type postHandler struct {
	responder    Responder
	logger       zerolog.Logger
	posts        *content.Service
	postRepo     *database.PostRepo
	categoryRepo *database.Repo[models.Category]
	tagRepo      *database.Repo[models.Tag]
	media        storage.Store
	mediaPrefix  string
	maxUpload    int64
	now          func() time.Time
}

func newPostHandler(db database.Database, posts *content.Service, media storage.Store, mediaPrefix string, maxUpload int64) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		posts:        posts,
		postRepo:     db.PostRepo(),
		categoryRepo: db.CategoryRepo(),
		tagRepo:      db.TagRepo(),
		media:        media,
		mediaPrefix:  mediaPrefix,
		maxUpload:    maxUpload,
		now:          time.Now,
	}
}

func pageArgs(r *http.Request, def int) (int, int) {
	q := r.URL.Query()
	return content.ParsePage(q.Get("page")), content.ParsePageSize(q.Get("page_size"), def, maxPageSize)
}

// listPosts returns a page of posts
// @Summary List posts
// @Description Anonymous callers see visible posts only; staff see every post
// @Tags Posts
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} content.Page
// @Router /posts [get]
func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := pageArgs(r, h.posts.PageSize())

		var (
			result content.Page
			err    error
		)
		if ctxGetPrincipal(r.Context()) != nil {
			result, err = h.posts.ListAll(r.Context(), page, size)
		} else {
			result, err = h.posts.ListPublished(r.Context(), page, size)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// getPost returns one post
// @Summary Get post
// @Tags Posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} ErrorResponse "Not Found - Post not found or not visible"
// @Router /posts/{postID} [get]
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var post *models.Post
		if ctxGetPrincipal(r.Context()) != nil {
			post, err = h.posts.Get(r.Context(), id)
		} else {
			post, err = h.posts.GetVisible(r.Context(), id)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

func (h postHandler) listDrafts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drafts, err := h.posts.ListDrafts(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, drafts)
	}
}

func (h postHandler) listByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, size := pageArgs(r, h.posts.PageSize())
		result, err := h.posts.ListByCategory(r.Context(), id, page, size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

func (h postHandler) listByTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, size := pageArgs(r, h.posts.PageSize())
		result, err := h.posts.ListByTag(r.Context(), id, page, size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// apply copies in onto post and checks the result, including that the
// category and tag exist.
func (h postHandler) apply(ctx context.Context, post *models.Post, in PostInput) error {
	post.Title = in.Title
	post.Content = in.Content
	post.FeaturedImage = in.FeaturedImage
	post.Status = in.Status
	if post.Status == "" {
		post.Status = models.StatusActive
	}
	post.CategoryID = in.Category
	post.TagID = in.Tag
	post.Category, post.Tag = nil, nil

	if err := models.Validate(post); err != nil {
		return err
	}
	fields := map[string][]string{}
	if ok, err := h.categoryRepo.Exists(ctx, post.CategoryID); err != nil {
		return errs.NewDatabaseError("check", "category", err)
	} else if !ok {
		fields["category"] = []string{"Invalid pk - object does not exist."}
	}
	if post.TagID != nil {
		if ok, err := h.tagRepo.Exists(ctx, *post.TagID); err != nil {
			return errs.NewDatabaseError("check", "tag", err)
		} else if !ok {
			fields["tag"] = []string{"Invalid pk - object does not exist."}
		}
	}
	if len(fields) > 0 {
		return errs.NewValidationError(fields)
	}
	return nil
}

func inputFrom(p *models.Post) PostInput {
	return PostInput{
		Title:         p.Title,
		Content:       p.Content,
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
		Tag:           p.TagID,
		Category:      p.CategoryID,
	}
}

// createPost creates a post authored by the caller
// @Summary Create post
// @Tags Posts
// @Accept json
// @Produce json
// @Param post body PostInput true "Post data"
// @Success 201 {object} models.Post
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid post data"
// @Router /posts [post]
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in PostInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.Post{AuthorID: ctxGetPrincipal(r.Context()).UserID}
		if err := h.apply(r.Context(), &post, in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.postRepo.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create", "post", err))
			return
		}
		h.posts.Invalidate(r.Context())

		created, err := h.posts.Get(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, created)
	}
}

// updatePost replaces a post's writable fields. With partial set, fields absent
// from the body keep their current values.
func (h postHandler) updatePost(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post, err := h.posts.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in PostInput
		if partial {
			in = inputFrom(post)
		}
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.apply(r.Context(), post, in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.postRepo.UpdateContent(r.Context(), post); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "post", err))
			return
		}
		h.posts.Invalidate(r.Context())

		updated, err := h.posts.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deletePost soft deletes a post
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.postRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "post", err))
			return
		}
		h.posts.Invalidate(r.Context())
		h.responder.WriteNoContent(w)
	}
}

// publishPost stamps a post as published now
// @Summary Publish post
// @Tags Posts
// @Accept json
// @Produce json
// @Param body body PublishRequest true "Post to publish"
// @Success 200 {object} models.Post
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or invalid post id"
// @Failure 404 {object} ErrorResponse "Not Found - Post not found"
// @Router /posts/publish [post]
func (h postHandler) publishPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PublishRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Post == 0 {
			h.responder.WriteError(w, errs.NewFieldError("post", "This field is required."))
			return
		}

		post, err := h.posts.Publish(r.Context(), req.Post, h.now())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Uint("postID", post.ID).Msg("post published")
		h.responder.WriteJSON(w, post)
	}
}

// uploadFeaturedImage stores the multipart "image" field and points the post at it
func (h postHandler) uploadFeaturedImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		current, err := h.posts.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		previous := current.FeaturedImage

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
		file, _, err := r.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUpload))
				return
			}
			h.responder.WriteError(w, errs.NewFieldError("image", "No file was submitted."))
			return
		}
		defer file.Close()

		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			h.responder.WriteError(w, errs.NewFieldError("image", "The submitted file is empty."))
			return
		}
		head = head[:n]
		contentType, ext, err := storage.SniffImage(head)
		if err != nil {
			h.responder.WriteError(w, errs.NewFieldError("image", "Upload a valid image."))
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		key := storage.NewKey(h.mediaPrefix, ext)
		if err := h.media.Put(r.Context(), key, contentType, file); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.postRepo.SetFeaturedImage(r.Context(), id, key); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "post", err))
			return
		}
		h.posts.Invalidate(r.Context())

		// the replaced image is only ours to remove when it is a stored key
		if previous != "" && !strings.Contains(previous, "://") {
			if err := h.media.Delete(r.Context(), previous); err != nil {
				h.logger.Warn().Err(err).Str("key", previous).Msg("failed to remove replaced featured image")
			}
		}

		post, err := h.posts.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Uint("postID", id).Str("key", key).Msg("featured image stored")
		h.responder.WriteJSON(w, FeaturedImageResponse{Post: post, URL: h.media.URL(key)})
	}
}
