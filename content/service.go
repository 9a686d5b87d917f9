package content

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/newsroom-backend/cache"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

const (
	HomeLatestCount  = 5
	HomeRecentCount  = 7
	FeaturedCount    = 4
	WeeklyTopCount   = 7
	WeeklyTopWindow  = 7 * 24 * time.Hour
	homeFeedCacheKey = "feed:home"
)

// PostStore is the slice of the post repository the service needs.
type PostStore interface {
	Find(ctx context.Context, scopes ...database.Scope) ([]models.Post, error)
	Count(ctx context.Context, scopes ...database.Scope) (int64, error)
	First(ctx context.Context, scopes ...database.Scope) (*models.Post, error)
	FindByID(ctx context.Context, id uint, scopes ...database.Scope) (*models.Post, error)
	IncrementViews(ctx context.Context, id uint) error
	SetPublishedAt(ctx context.Context, id uint, t time.Time) error
}

// Featured is the home page's featured block: one lead story and up to three more.
type Featured struct {
	Lead   *models.Post  `json:"lead"`
	Others []models.Post `json:"others"`
}

// HomeFeed is everything the home page lists.
type HomeFeed struct {
	Latest    []models.Post `json:"latest"`
	Featured  Featured      `json:"featured"`
	WeeklyTop []models.Post `json:"weekly_top"`
	Recent    []models.Post `json:"recent"`
}

// PostDetail is a post read for its detail page, with its visible neighbours by id.
type PostDetail struct {
	Post     *models.Post
	Previous *models.Post
	Next     *models.Post
}

// Service answers every post query made by the web pages and the API.
type Service struct {
	posts    PostStore
	feeds    *cache.Typed[HomeFeed]
	pageSize int
}

// NewService creates the service. A nil cache disables home feed caching.
func NewService(posts PostStore, c cache.Cache, ttl time.Duration, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = 10
	}
	s := &Service{posts: posts, pageSize: pageSize}
	if c != nil {
		s.feeds = cache.NewTyped[HomeFeed](c, ttl)
	}
	return s
}

// PageSize is the default number of posts per page.
func (s *Service) PageSize() int {
	return s.pageSize
}

func (s *Service) find(ctx context.Context, scopes ...database.Scope) ([]models.Post, error) {
	posts, err := s.posts.Find(ctx, scopes...)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "posts", err)
	}
	return posts, nil
}

// paginate counts with filters only, then fetches the clamped page in the given order.
func (s *Service) paginate(ctx context.Context, number, size int, order database.Scope, filters ...database.Scope) (Page, error) {
	if size < 1 {
		size = s.pageSize
	}
	total, err := s.posts.Count(ctx, filters...)
	if err != nil {
		return Page{}, errs.NewDatabaseError("count", "posts", err)
	}
	page := newPage(number, size, total)
	if total == 0 {
		return page, nil
	}

	scopes := make([]database.Scope, 0, len(filters)+2)
	scopes = append(scopes, filters...)
	scopes = append(scopes, order, window(page.offset(), page.Size))
	posts, err := s.find(ctx, scopes...)
	if err != nil {
		return Page{}, err
	}
	page.Posts = posts
	return page, nil
}

// ListRecent returns the n most recently published visible posts.
func (s *Service) ListRecent(ctx context.Context, n int) ([]models.Post, error) {
	return s.find(ctx, Visible, Newest, Limit(n))
}

// ListFeatured returns the lead story and up to three others, newest first with
// view count breaking ties.
func (s *Service) ListFeatured(ctx context.Context) (Featured, error) {
	posts, err := s.find(ctx, Visible, NewestThenMostViewed, Limit(FeaturedCount))
	if err != nil {
		return Featured{}, err
	}
	if len(posts) == 0 {
		return Featured{Others: []models.Post{}}, nil
	}
	return Featured{Lead: &posts[0], Others: posts[1:]}, nil
}

// ListWeeklyTop returns visible posts published within the week before now.
func (s *Service) ListWeeklyTop(ctx context.Context, now time.Time) ([]models.Post, error) {
	return s.find(ctx, Visible, PublishedSince(now.Add(-WeeklyTopWindow)), NewestThenMostViewed, Limit(WeeklyTopCount))
}

func (s *Service) ListByCategory(ctx context.Context, categoryID uint, page, size int) (Page, error) {
	return s.paginate(ctx, page, size, Newest, Visible, InCategory(categoryID))
}

func (s *Service) ListByTag(ctx context.Context, tagID uint, page, size int) (Page, error) {
	return s.paginate(ctx, page, size, Newest, Visible, WithTag(tagID))
}

// ListPublished pages through every visible post.
func (s *Service) ListPublished(ctx context.Context, page, size int) (Page, error) {
	return s.paginate(ctx, page, size, Newest, Visible)
}

// ListAll pages through every post that has not been deleted, visible or not.
func (s *Service) ListAll(ctx context.Context, page, size int) (Page, error) {
	return s.paginate(ctx, page, size, ByID)
}

// ListDrafts returns posts that have never been published.
func (s *Service) ListDrafts(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, Drafts, ByID)
}

// Search matches query against title or content of visible posts. A blank query
// matches nothing.
func (s *Service) Search(ctx context.Context, query string, page, size int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		if size < 1 {
			size = s.pageSize
		}
		return newPage(1, size, 0), nil
	}
	return s.paginate(ctx, page, size, Newest, Visible, Matching(query))
}

// GetVisible returns a post the public may see, or a not-found error.
func (s *Service) GetVisible(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id, Visible)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "post", err)
	}
	return post, nil
}

// Get returns a post whatever its visibility.
func (s *Service) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "post", err)
	}
	return post, nil
}

// RecordView adds one to the post's view count.
func (s *Service) RecordView(ctx context.Context, id uint) error {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return errs.NewDatabaseError("record view", "post", err)
	}
	return nil
}

// Neighbors returns the visible posts immediately before and after id. Either may be nil.
func (s *Service) Neighbors(ctx context.Context, id uint) (prev, next *models.Post, err error) {
	prev, err = s.posts.First(ctx, Visible, IDBefore(id))
	if err != nil {
		return nil, nil, errs.NewDatabaseError("get", "post", err)
	}
	next, err = s.posts.First(ctx, Visible, IDAfter(id))
	if err != nil {
		return nil, nil, errs.NewDatabaseError("get", "post", err)
	}
	return prev, next, nil
}

// ReadPost loads a visible post for its detail page and counts the view.
func (s *Service) ReadPost(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := s.GetVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.RecordView(ctx, id); err != nil {
		return nil, err
	}
	post.ViewsCount++

	prev, next, err := s.Neighbors(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Previous: prev, Next: next}, nil
}

// Publish stamps the post as published at now. Publishing again moves the timestamp.
func (s *Service) Publish(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	if err := s.posts.SetPublishedAt(ctx, id, now); err != nil {
		return nil, errs.NewDatabaseError("publish", "post", err)
	}
	s.Invalidate(ctx)
	return s.Get(ctx, id)
}

// HomeFeed builds the home page lists concurrently, served from cache when possible.
func (s *Service) HomeFeed(ctx context.Context, now time.Time) (*HomeFeed, error) {
	if s.feeds == nil {
		return s.buildHomeFeed(ctx, now)
	}
	return s.feeds.GetOrLoad(ctx, homeFeedCacheKey, func(ctx context.Context) (*HomeFeed, error) {
		return s.buildHomeFeed(ctx, now)
	})
}

func (s *Service) buildHomeFeed(ctx context.Context, now time.Time) (*HomeFeed, error) {
	var feed HomeFeed
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		feed.Latest, err = s.ListRecent(gctx, HomeLatestCount)
		return err
	})
	g.Go(func() error {
		var err error
		feed.Featured, err = s.ListFeatured(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		feed.WeeklyTop, err = s.ListWeeklyTop(gctx, now)
		return err
	})
	g.Go(func() error {
		var err error
		feed.Recent, err = s.ListRecent(gctx, HomeRecentCount)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Invalidate drops cached feeds. Every post write calls it.
func (s *Service) Invalidate(ctx context.Context) {
	if s.feeds == nil {
		return
	}
	if err := s.feeds.Delete(ctx, homeFeedCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate home feed cache")
	}
}
