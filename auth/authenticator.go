package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

// UserStore is the slice of the user repository used for logins.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Add(ctx context.Context, u *models.User) error
}

// Authenticator exchanges credentials for access tokens.
type Authenticator struct {
	users  UserStore
	issuer *Issuer
}

func NewAuthenticator(users UserStore, issuer *Issuer) *Authenticator {
	return &Authenticator{users: users, issuer: issuer}
}

// Token is an issued access token.
type Token struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the credentials of an active user and issues a token.
func (a *Authenticator) Login(ctx context.Context, username, password string, now time.Time) (*Token, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewInvalidCredentialsError()
		}
		return nil, errs.NewDatabaseError("get", "user", err)
	}
	if !user.IsActive || !CheckPassword(user.PasswordHash, password) {
		return nil, errs.NewInvalidCredentialsError()
	}

	access, expiresAt, err := a.issuer.Issue(*user, now)
	if err != nil {
		return nil, err
	}
	return &Token{Access: access, ExpiresAt: expiresAt}, nil
}

// Verify parses a bearer token into a principal.
func (a *Authenticator) Verify(token string, now time.Time) (*Principal, error) {
	p, err := a.issuer.Parse(token, now)
	if err != nil {
		return nil, errs.NewInvalidTokenError()
	}
	return p, nil
}

// EnsureAdmin creates an active superuser with the given credentials unless the
// username already exists. An empty username or password does nothing.
func EnsureAdmin(ctx context.Context, users UserStore, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  true,
	}
	if err := users.Add(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("created admin user")
	return nil
}
