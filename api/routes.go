package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/auth"
	"github.com/rpupo63/newsroom-backend/errs"
)

// crudRoutes registers the handlers of one resource behind the permission table.
// Nil handlers are left unrouted.
type crudRoutes struct {
	list, create, retrieve, update, patch, destroy http.HandlerFunc
}

func mountResource(r chi.Router, path string, res auth.Resource, m authMiddleware, h crudRoutes) {
	r.Route(path, func(r chi.Router) {
		handle := func(method, pattern string, fn http.HandlerFunc) {
			act, ok := auth.ActionFor(method, pattern != "/")
			if !ok {
				panic(fmt.Sprintf("no action for %s %s%s", method, path, pattern))
			}
			r.With(m.permit(res, act)).Method(method, pattern, fn)
		}

		if h.list != nil {
			handle(http.MethodGet, "/", h.list)
		}
		if h.create != nil {
			handle(http.MethodPost, "/", h.create)
		}
		if h.retrieve != nil {
			handle(http.MethodGet, "/{id}", h.retrieve)
		}
		handle(http.MethodPut, "/{id}", orNotAllowed(h.update))
		handle(http.MethodPatch, "/{id}", orNotAllowed(h.patch))
		if h.destroy != nil {
			handle(http.MethodDelete, "/{id}", h.destroy)
		}
	})
}

func orNotAllowed(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	responder := NewResponder(log.Logger)
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewMethodNotAllowedError(r.Method))
	}
}

// setupAPIRoutes sets up every /api route. Permissions follow the auth table.
func setupAPIRoutes(r chi.Router, handlers *routeHandlers, m authMiddleware, limitPublicWrites func(http.Handler) http.Handler) {
	r.Use(m.authenticate)

	r.Get("/health", handlers.healthHandler.health())
	r.With(limitPublicWrites).Post("/auth/token", handlers.authHandler.issueToken())

	ph := handlers.postHandler
	ch := handlers.commentHandler
	r.Route("/posts", func(r chi.Router) {
		r.With(m.permit(auth.Posts, auth.List)).Get("/", ph.listPosts())
		r.With(m.permit(auth.Posts, auth.Create)).Post("/", ph.createPost())

		r.With(m.permit(auth.Posts, auth.Publish)).Get("/drafts", ph.listDrafts())
		r.With(m.permit(auth.Posts, auth.List)).Get("/by-category/{categoryID}", ph.listByCategory())
		r.With(m.permit(auth.Posts, auth.List)).Get("/by-tag/{tagID}", ph.listByTag())
		r.With(m.permit(auth.Posts, auth.Publish)).Post("/publish", ph.publishPost())

		r.Route("/{postID}", func(r chi.Router) {
			r.With(m.permit(auth.Posts, auth.Retrieve)).Get("/", ph.getPost())
			r.With(m.permit(auth.Posts, auth.Update)).Put("/", ph.updatePost(false))
			r.With(m.permit(auth.Posts, auth.PartialUpdate)).Patch("/", ph.updatePost(true))
			r.With(m.permit(auth.Posts, auth.Destroy)).Delete("/", ph.deletePost())
			r.With(m.permit(auth.Posts, auth.Publish)).Post("/featured-image", ph.uploadFeaturedImage())

			r.Get("/comments", ch.listPostComments())
			r.With(limitPublicWrites).Post("/comments", ch.createPostComment())
		})
	})

	cat := handlers.categoryHandler
	mountResource(r, "/categories", auth.Categories, m, crudRoutes{
		list: cat.list(), create: cat.create(), retrieve: cat.get(),
		update: cat.update(false), patch: cat.update(true), destroy: cat.delete(),
	})
	tag := handlers.tagHandler
	mountResource(r, "/tags", auth.Tags, m, crudRoutes{
		list: tag.list(), create: tag.create(), retrieve: tag.get(),
		update: tag.update(false), patch: tag.update(true), destroy: tag.delete(),
	})
	grp := handlers.groupHandler
	mountResource(r, "/groups", auth.Groups, m, crudRoutes{
		list: grp.list(), create: grp.create(), retrieve: grp.get(),
		update: grp.update(false), patch: grp.update(true), destroy: grp.delete(),
	})
	usr := handlers.userHandler
	mountResource(r, "/users", auth.Users, m, crudRoutes{
		list: usr.listUsers(), create: usr.createUser(), retrieve: usr.getUser(),
		update: usr.updateUser(false), patch: usr.updateUser(true), destroy: usr.deleteUser(),
	})

	// comments are immutable once stored
	cmt := handlers.commentAdminHandler
	mountResource(r, "/comments", auth.Comments, m, crudRoutes{
		list: cmt.list(), create: ch.createComment(), retrieve: cmt.get(), destroy: cmt.delete(),
	})

	sub := handlers.submissionHandler
	con := handlers.contactHandler
	r.Group(func(r chi.Router) {
		r.Use(limitPublicWrites)
		mountResource(r, "/contacts", auth.Contacts, m, crudRoutes{
			list: con.list(), create: sub.createContact(), retrieve: con.get(), destroy: con.delete(),
		})
		nl := handlers.newsletterHandler
		mountResource(r, "/newsletters", auth.Newsletters, m, crudRoutes{
			list: nl.list(), create: sub.createNewsletter(), retrieve: nl.get(), destroy: nl.delete(),
		})
	})
}
