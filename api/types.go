package api

import (
	"time"

	"github.com/rpupo63/newsroom-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	postHandler         postHandler
	commentHandler      commentHandler
	commentAdminHandler crudHandler[models.Comment]
	categoryHandler     crudHandler[models.Category]
	tagHandler          crudHandler[models.Tag]
	groupHandler        crudHandler[models.Group]
	contactHandler      crudHandler[models.Contact]
	newsletterHandler   crudHandler[models.Newsletter]
	submissionHandler   submissionHandler
	userHandler         userHandler
	authHandler         authHandler
	healthHandler       healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string              `json:"error" example:"Internal Server Error"`
	Status  string              `json:"status" example:"error"`
	Field   string              `json:"field,omitempty" example:"title"`
	Details string              `json:"details,omitempty" example:"Additional error details"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// PostInput is the writable part of a post. views_count and published_at are
// read-only and the author is always the caller.
type PostInput struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	FeaturedImage string            `json:"featured_image"`
	Status        models.PostStatus `json:"status"`
	Tag           *uint             `json:"tag"`
	Category      uint              `json:"category"`
}

// PublishRequest is the body of POST /posts/publish
type PublishRequest struct {
	Post uint `json:"post"`
}

// FeaturedImageResponse is returned after a featured image upload
type FeaturedImageResponse struct {
	Post *models.Post `json:"post"`
	URL  string       `json:"url"`
}

// UserInput is the writable part of a user. Password is write-only and optional on update.
type UserInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	Password    string `json:"password,omitempty"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	Groups      []uint `json:"groups"`
}

// TokenRequest is the body of POST /auth/token
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}
