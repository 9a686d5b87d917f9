// Package testutil provides shared helpers for package tests: an in-memory
// database with the full schema and small fixture builders.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/newsroom-backend/config"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/models"
)

// NewDB opens a migrated in-memory SQLite database that is closed when the test ends.
func NewDB(t *testing.T) database.Database {
	t.Helper()

	gdb, err := database.Open(config.Database{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	db := database.New(gdb)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Fixtures creates related rows with sensible defaults.
type Fixtures struct {
	t        *testing.T
	db       database.Database
	Author   *models.User
	Category *models.Category
	Tag      *models.Tag
}

// NewFixtures seeds one author, one category and one tag.
func NewFixtures(t *testing.T, db database.Database) *Fixtures {
	t.Helper()
	f := &Fixtures{t: t, db: db}
	f.Author = f.User("editor", false)
	f.Category = f.NewCategory("World")
	f.Tag = f.NewTag("breaking")
	return f
}

func (f *Fixtures) User(username string, superuser bool) *models.User {
	f.t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", IsActive: true, IsSuperuser: superuser}
	require.NoError(f.t, f.db.UserRepo().Add(context.Background(), u))
	return u
}

func (f *Fixtures) NewCategory(name string) *models.Category {
	f.t.Helper()
	c := &models.Category{Name: name}
	require.NoError(f.t, f.db.CategoryRepo().Add(context.Background(), c))
	return c
}

func (f *Fixtures) NewTag(name string) *models.Tag {
	f.t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(f.t, f.db.TagRepo().Add(context.Background(), tag))
	return tag
}

// PostOption customizes a fixture post.
type PostOption func(*models.Post)

func Published(at time.Time) PostOption {
	return func(p *models.Post) { p.PublishedAt = &at }
}

func Draft() PostOption {
	return func(p *models.Post) { p.PublishedAt = nil }
}

func Inactive() PostOption {
	return func(p *models.Post) { p.Status = models.StatusInactive }
}

func Views(n uint) PostOption {
	return func(p *models.Post) { p.ViewsCount = n }
}

func Content(s string) PostOption {
	return func(p *models.Post) { p.Content = s }
}

func InCategory(c *models.Category) PostOption {
	return func(p *models.Post) { p.CategoryID = c.ID }
}

func WithTag(tag *models.Tag) PostOption {
	return func(p *models.Post) { p.TagID = &tag.ID }
}

// Post creates an active post in the default category, published an hour ago
// unless options say otherwise.
func (f *Fixtures) Post(title string, opts ...PostOption) *models.Post {
	f.t.Helper()
	published := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	p := &models.Post{
		Title:       title,
		Content:     "Body of " + title,
		Status:      models.StatusActive,
		PublishedAt: &published,
		AuthorID:    f.Author.ID,
		CategoryID:  f.Category.ID,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(f.t, f.db.PostRepo().Add(context.Background(), p))
	return p
}
