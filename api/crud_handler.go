package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

// crudHandler serves the plain resources whose JSON body is the model itself.
type crudHandler[T any] struct {
	responder  Responder
	logger     zerolog.Logger
	repo       *database.Repo[T]
	entity     string
	setID      func(*T, uint)
	afterWrite func(context.Context)
}

func newCRUDHandler[T any](entity string, repo *database.Repo[T], setID func(*T, uint), afterWrite func(context.Context)) crudHandler[T] {
	logger := log.With().Str("handlerName", entity+"Handler").Logger()
	if afterWrite == nil {
		afterWrite = func(context.Context) {}
	}
	return crudHandler[T]{
		responder:  NewResponder(logger),
		logger:     logger,
		repo:       repo,
		entity:     entity,
		setID:      setID,
		afterWrite: afterWrite,
	}
}

func (h crudHandler[T]) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.repo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("list", h.entity, err))
			return
		}
		if rows == nil {
			rows = []T{}
		}
		h.responder.WriteJSON(w, rows)
	}
}

func (h crudHandler[T]) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		row, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("get", h.entity, err))
			return
		}
		h.responder.WriteJSON(w, row)
	}
}

func (h crudHandler[T]) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var row T
		if err := decodeJSON(w, r, &row); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.setID(&row, 0)
		if err := models.Validate(&row); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.repo.Add(r.Context(), &row); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create", h.entity, err))
			return
		}
		h.afterWrite(r.Context())
		h.responder.WriteJSONStatus(w, http.StatusCreated, &row)
	}
}

// update replaces a row. With partial set the body is applied over the stored row.
func (h crudHandler[T]) update(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		existing, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("get", h.entity, err))
			return
		}

		var row T
		if partial {
			row = *existing
		}
		if err := decodeJSON(w, r, &row); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.setID(&row, id)
		if err := models.Validate(&row); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.repo.Update(r.Context(), &row); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", h.entity, err))
			return
		}
		h.afterWrite(r.Context())
		h.responder.WriteJSON(w, &row)
	}
}

func (h crudHandler[T]) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", h.entity, err))
			return
		}
		h.afterWrite(r.Context())
		h.responder.WriteNoContent(w)
	}
}
