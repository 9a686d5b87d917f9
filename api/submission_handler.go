package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/models"
)

// submissionHandler accepts the public write-once records: contact messages
// and newsletter sign-ups.
type submissionHandler struct {
	responder   Responder
	logger      zerolog.Logger
	submissions *content.SubmissionService
}

func newSubmissionHandler(submissions *content.SubmissionService) submissionHandler {
	logger := log.With().Str("handlerName", "submissionHandler").Logger()
	return submissionHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		submissions: submissions,
	}
}

func (h submissionHandler) createContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Contact
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		contact, err := h.submissions.Contact(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, contact)
	}
}

func (h submissionHandler) createNewsletter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Newsletter
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		sub, err := h.submissions.Subscribe(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, sub)
	}
}
