package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

// postsPerPage is the page size of the post list and search pages.
const postsPerPage = 1

const (
	contactSuccess  = "Successfully submitted your query. We will contact you soon."
	contactFailure  = "Cannot submit your query. Please make sure all fields are valid."
	newsletterAJAX  = "cannot process. Must be an AJAX XMLHttpRequest"
	newsletterError = "cannot subscribe to the newsletter."
	newsletterOK    = "successfully subscribed to the newsletter."
)

type pageHandler struct {
	logger      zerolog.Logger
	renderer    *Renderer
	posts       *content.Service
	comments    *content.CommentService
	submissions *content.SubmissionService
	now         func() time.Time
}

func newPageHandler(renderer *Renderer, posts *content.Service, comments *content.CommentService, submissions *content.SubmissionService) pageHandler {
	return pageHandler{
		logger:      log.With().Str("handlerName", "pageHandler").Logger(),
		renderer:    renderer,
		posts:       posts,
		comments:    comments,
		submissions: submissions,
		now:         time.Now,
	}
}

type listView struct {
	Heading string
	Page    content.Page
	BaseURL string
}

type searchView struct {
	Query   string
	Page    content.Page
	BaseURL string
}

type detailView struct {
	Detail   *content.PostDetail
	Comments []models.Comment
	Form     models.Comment
	Errors   map[string][]string
}

type contactView struct {
	Form   models.Contact
	Errors map[string][]string
}

type errorView struct {
	Status  int
	Message string
}

type newsletterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h pageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data templateData) {
	if err := h.renderer.Render(w, r, status, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
	}
}

// renderError shows the error page. Only ApiErr messages below 500 reach the visitor.
func (h pageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong on our side. Please try again later."

	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		status = apiErr.StatusCode
		message = http.StatusText(status)
		if status == http.StatusNotFound {
			message = "The page you were looking for could not be found."
		}
	} else {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("page request failed")
	}

	h.render(w, r, status, "error", templateData{
		Title: http.StatusText(status),
		Data:  errorView{Status: status, Message: message},
	})
}

func (h pageHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, errs.NewNotFoundError("page"))
}

func (h pageHandler) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, errs.NewRateLimitedError())
}

func (h pageHandler) home(w http.ResponseWriter, r *http.Request) {
	feed, err := h.posts.HomeFeed(r.Context(), h.now())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home", templateData{Data: feed})
}

func (h pageHandler) about(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about", templateData{Title: "About"})
}

func (h pageHandler) contactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contact", templateData{Title: "Contact", Data: contactView{}})
}

func (h pageHandler) submitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, errs.NewBadRequestError("invalid form data"))
		return
	}
	in := models.Contact{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}

	if _, err := h.submissions.Contact(r.Context(), in); err != nil {
		if !errs.IsValidation(err) {
			h.renderError(w, r, err)
			return
		}
		h.renderer.SetFlash(r, contactFailure, "error")
		h.render(w, r, http.StatusBadRequest, "contact", templateData{
			Title: "Contact",
			Data:  contactView{Form: in, Errors: errs.FieldErrors(err)},
		})
		return
	}

	h.renderer.SetFlash(r, contactSuccess, "success")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

func (h pageHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.ListPublished(r.Context(), content.ParsePage(r.URL.Query().Get("page")), postsPerPage)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "list", templateData{
		Title: "Latest",
		Data:  listView{Heading: "Latest news", Page: page, BaseURL: "/posts"},
	})
}

func (h pageHandler) postsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "categoryID")
	if !ok {
		h.notFound(w, r)
		return
	}
	page, err := h.posts.ListByCategory(r.Context(), id, content.ParsePage(r.URL.Query().Get("page")), h.posts.PageSize())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	heading := "Category"
	if len(page.Posts) > 0 && page.Posts[0].Category != nil {
		heading = page.Posts[0].Category.Name
	}
	h.render(w, r, http.StatusOK, "list", templateData{
		Title: heading,
		Data:  listView{Heading: heading, Page: page, BaseURL: r.URL.Path},
	})
}

func (h pageHandler) postsByTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "tagID")
	if !ok {
		h.notFound(w, r)
		return
	}
	page, err := h.posts.ListByTag(r.Context(), id, content.ParsePage(r.URL.Query().Get("page")), h.posts.PageSize())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	heading := "Tag"
	if len(page.Posts) > 0 && page.Posts[0].Tag != nil {
		heading = "#" + page.Posts[0].Tag.Name
	}
	h.render(w, r, http.StatusOK, "list", templateData{
		Title: heading,
		Data:  listView{Heading: heading, Page: page, BaseURL: r.URL.Path},
	})
}

func (h pageHandler) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	page, err := h.posts.Search(r.Context(), query, content.ParsePage(r.URL.Query().Get("page")), postsPerPage)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "search", templateData{
		Title: "Search",
		Query: query,
		Data:  searchView{Query: query, Page: page, BaseURL: "/search?query=" + url.QueryEscape(query)},
	})
}

// postDetail shows one visible post and counts the view.
func (h pageHandler) postDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "postID")
	if !ok {
		h.notFound(w, r)
		return
	}
	detail, err := h.posts.ReadPost(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	view, err := h.withComments(r.Context(), detail)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "detail", templateData{Title: detail.Post.Title, Data: view})
}

func (h pageHandler) withComments(ctx context.Context, detail *content.PostDetail) (detailView, error) {
	comments, err := h.comments.List(ctx, detail.Post.ID)
	if err != nil {
		return detailView{}, err
	}
	return detailView{Detail: detail, Comments: comments}, nil
}

// submitComment stores a comment and returns to the post. Invalid input re-renders
// the post with the errors and does not count a view.
func (h pageHandler) submitComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "postID")
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, errs.NewBadRequestError("invalid form data"))
		return
	}
	in := models.Comment{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Content: r.PostForm.Get("content"),
	}

	_, err := h.comments.Submit(r.Context(), id, in)
	if err == nil {
		http.Redirect(w, r, "/posts/"+strconv.FormatUint(uint64(id), 10), http.StatusSeeOther)
		return
	}
	if !errs.IsValidation(err) {
		h.renderError(w, r, err)
		return
	}

	post, getErr := h.posts.GetVisible(r.Context(), id)
	if getErr != nil {
		h.renderError(w, r, getErr)
		return
	}
	prev, next, getErr := h.posts.Neighbors(r.Context(), id)
	if getErr != nil {
		h.renderError(w, r, getErr)
		return
	}
	view, getErr := h.withComments(r.Context(), &content.PostDetail{Post: post, Previous: prev, Next: next})
	if getErr != nil {
		h.renderError(w, r, getErr)
		return
	}
	view.Form = in
	view.Errors = errs.FieldErrors(err)
	h.render(w, r, http.StatusBadRequest, "detail", templateData{Title: post.Title, Data: view})
}

// subscribe is the newsletter form's AJAX endpoint.
func (h pageHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		h.writeJSON(w, http.StatusBadRequest, newsletterResponse{Message: newsletterAJAX})
		return
	}
	if err := r.ParseMultipartForm(1 << 16); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.writeJSON(w, http.StatusBadRequest, newsletterResponse{Message: newsletterError})
		return
	}

	if _, err := h.submissions.Subscribe(r.Context(), models.Newsletter{Email: r.PostFormValue("email")}); err != nil {
		if !errs.IsValidation(err) {
			h.logger.Error().Err(err).Msg("newsletter subscription failed")
			h.writeJSON(w, http.StatusInternalServerError, newsletterResponse{Message: newsletterError})
			return
		}
		h.writeJSON(w, http.StatusBadRequest, newsletterResponse{Message: newsletterError})
		return
	}
	h.writeJSON(w, http.StatusOK, newsletterResponse{Success: true, Message: newsletterOK})
}

func (h pageHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("error writing response")
	}
}

func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
