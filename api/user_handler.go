package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/auth"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
}

func newUserHandler(userRepo *database.UserRepo) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()
	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
	}
}

func (h userHandler) listUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.userRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("list", "users", err))
			return
		}
		h.responder.WriteJSON(w, users)
	}
}

func (h userHandler) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user, err := h.userRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("get", "user", err))
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func inputFromUser(u *models.User) UserInput {
	active := u.IsActive
	groups := make([]uint, 0, len(u.Groups))
	for _, g := range u.Groups {
		groups = append(groups, g.ID)
	}
	return UserInput{
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		IsActive:    &active,
		IsSuperuser: u.IsSuperuser,
		Groups:      groups,
	}
}

// applyUser copies in onto u. A new user needs a password; existing users keep
// theirs unless one is sent.
func applyUser(u *models.User, in UserInput) error {
	u.Username = in.Username
	u.Email = in.Email
	u.FirstName = in.FirstName
	u.IsSuperuser = in.IsSuperuser
	u.IsActive = in.IsActive == nil || *in.IsActive
	u.Groups = nil

	fields := map[string][]string{}
	if err := models.Validate(u); err != nil {
		for k, v := range errs.FieldErrors(err) {
			fields[k] = v
		}
	}
	switch {
	case in.Password != "":
		if len(in.Password) < 8 {
			fields["password"] = []string{"Ensure this field has at least 8 characters."}
			break
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	case u.ID == 0:
		fields["password"] = []string{"This field is required."}
	}
	if len(fields) > 0 {
		return errs.NewValidationError(fields)
	}
	return nil
}

func (h userHandler) saveGroups(ctx context.Context, u *models.User, groupIDs []uint) error {
	if err := h.userRepo.ReplaceGroups(ctx, u, groupIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewFieldError("groups", "Invalid pk - object does not exist.")
		}
		return errs.NewDatabaseError("set", "groups", err)
	}
	return nil
}

func (h userHandler) createUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in UserInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var user models.User
		if err := applyUser(&user, in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.userRepo.Add(r.Context(), &user); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("create", "user", err))
			return
		}
		if err := h.saveGroups(r.Context(), &user, in.Groups); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Str("username", user.Username).Msg("user created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, &user)
	}
}

func (h userHandler) updateUser(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user, err := h.userRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("get", "user", err))
			return
		}

		var in UserInput
		if partial {
			in = inputFromUser(user)
		}
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := applyUser(user, in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.userRepo.Update(r.Context(), user); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("update", "user", err))
			return
		}
		if err := h.saveGroups(r.Context(), user, in.Groups); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if p := ctxGetPrincipal(r.Context()); p != nil && p.UserID == id {
			h.responder.WriteError(w, errs.NewForbiddenError("cannot delete your own account"))
			return
		}
		if err := h.userRepo.ReplaceGroups(r.Context(), &models.User{ID: id}, nil); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "user", err))
			return
		}
		if err := h.userRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "user", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}
