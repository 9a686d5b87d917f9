package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/auth"
	"github.com/rpupo63/newsroom-backend/errs"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	authn     *auth.Authenticator
	now       func() time.Time
}

func newAuthHandler(authn *auth.Authenticator) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		authn:     authn,
		now:       time.Now,
	}
}

// issueToken exchanges credentials for a bearer token
// @Summary Obtain access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body TokenRequest true "Credentials"
// @Success 200 {object} auth.Token
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /auth/token [post]
func (h authHandler) issueToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string][]string{}
		if req.Username == "" {
			fields["username"] = []string{"This field is required."}
		}
		if req.Password == "" {
			fields["password"] = []string{"This field is required."}
		}
		if len(fields) > 0 {
			h.responder.WriteError(w, errs.NewValidationError(fields))
			return
		}

		token, err := h.authn.Login(r.Context(), req.Username, req.Password, h.now())
		if err != nil {
			if errs.IsInvalidCredentialsError(err) {
				h.logger.Warn().Str("username", req.Username).Msg("failed login")
			}
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, token)
	}
}
