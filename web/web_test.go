package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/models"
	"github.com/rpupo63/newsroom-backend/ratelimit"
	"github.com/rpupo63/newsroom-backend/storage"
	"github.com/rpupo63/newsroom-backend/testutil"
)

type testSite struct {
	t       *testing.T
	db      database.Database
	f       *testutil.Fixtures
	media   *storage.DiskStore
	handler http.Handler
}

func newTestSite(t *testing.T, limiter *ratelimit.Limiter) *testSite {
	t.Helper()
	db := testutil.NewDB(t)

	media, err := storage.NewDiskStore(t.TempDir(), "/media")
	require.NoError(t, err)

	posts := content.NewService(db.PostRepo(), nil, 0, 10)
	handler, err := NewHandler(Dependencies{
		Sessions:    NewSessionManager(time.Hour, false),
		Posts:       posts,
		Comments:    content.NewCommentService(db.CommentRepo(), posts),
		Submissions: content.NewSubmissionService(db.ContactRepo(), db.NewsletterRepo()),
		Markdown:    content.NewRenderer(),
		Media:       media,
		MediaDir:    media.Dir(),
		Limiter:     limiter,
	})
	require.NoError(t, err)

	return &testSite{t: t, db: db, f: testutil.NewFixtures(t, db), media: media, handler: handler}
}

func (s *testSite) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) postForm(path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func hoursAgo(h int) testutil.PostOption {
	return testutil.Published(time.Now().UTC().Add(-time.Duration(h) * time.Hour).Truncate(time.Second))
}

func TestHomePage(t *testing.T) {
	s := newTestSite(t, nil)
	s.f.Post("Council passes budget", hoursAgo(2))
	s.f.Post("Storm warning issued", hoursAgo(1), testutil.Views(40))
	s.f.Post("Unfinished draft", testutil.Draft())
	s.f.Post("Pulled story", testutil.Inactive())

	rec := s.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Council passes budget")
	assert.Contains(t, body, "Storm warning issued")
	assert.NotContains(t, body, "Unfinished draft")
	assert.NotContains(t, body, "Pulled story")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestAboutAndNotFound(t *testing.T) {
	s := newTestSite(t, nil)

	assert.Equal(t, http.StatusOK, s.get("/about").Code)

	rec := s.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be found")
}

func TestPostDetail(t *testing.T) {
	s := newTestSite(t, nil)
	first := s.f.Post("First", hoursAgo(3))
	post := s.f.Post("Middle", hoursAgo(2), testutil.Content("Read **carefully**.\n\n<script>alert(1)</script>"))
	last := s.f.Post("Last", hoursAgo(1))
	draft := s.f.Post("Hidden", testutil.Draft())

	rec := s.get("/posts/" + itoa(post.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>carefully</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, `href="/posts/`+itoa(first.ID)+`"`)
	assert.Contains(t, body, `href="/posts/`+itoa(last.ID)+`"`)
	assert.Contains(t, body, "1 views")

	s.get("/posts/" + itoa(post.ID))
	stored, err := s.db.PostRepo().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.ViewsCount)

	assert.Equal(t, http.StatusNotFound, s.get("/posts/"+itoa(draft.ID)).Code)
	assert.Equal(t, http.StatusNotFound, s.get("/posts/abc").Code)

	stored, err = s.db.PostRepo().FindByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ViewsCount)
}

func TestPostListPaginatesOnePerPage(t *testing.T) {
	s := newTestSite(t, nil)
	s.f.Post("Older", hoursAgo(2))
	s.f.Post("Newer", hoursAgo(1))

	rec := s.get("/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Newer")
	assert.NotContains(t, rec.Body.String(), "Older")
	assert.Contains(t, rec.Body.String(), `href="/posts?page=2"`)

	rec = s.get("/posts?page=2")
	assert.Contains(t, rec.Body.String(), "Older")

	for _, page := range []string{"abc", "0", "-3"} {
		rec = s.get("/posts?page=" + page)
		require.Equal(t, http.StatusOK, rec.Code, page)
		assert.Contains(t, rec.Body.String(), "Newer", page)
	}

	rec = s.get("/posts?page=99")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Older")
}

func TestCategoryAndTagPages(t *testing.T) {
	s := newTestSite(t, nil)
	sports := s.f.NewCategory("Sports")
	s.f.Post("Cup final tonight", testutil.InCategory(sports))
	s.f.Post("Election results", testutil.WithTag(s.f.Tag))
	s.f.Post("Draft sports piece", testutil.InCategory(sports), testutil.Draft())

	rec := s.get("/posts/category/" + itoa(sports.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cup final tonight")
	assert.Contains(t, rec.Body.String(), "Sports")
	assert.NotContains(t, rec.Body.String(), "Election results")
	assert.NotContains(t, rec.Body.String(), "Draft sports piece")

	rec = s.get("/posts/tag/" + itoa(s.f.Tag.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Election results")
	assert.Contains(t, rec.Body.String(), "#breaking")
	assert.NotContains(t, rec.Body.String(), "Cup final tonight")
}

func TestSearchPage(t *testing.T) {
	s := newTestSite(t, nil)
	s.f.Post("Harbour REDEVELOPMENT approved", hoursAgo(2))
	s.f.Post("Weather", hoursAgo(1), testutil.Content("The redevelopment site flooded."))
	s.f.Post("Redevelopment draft", testutil.Draft())

	rec := s.get("/search?query=redevelopment")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2 result(s)")
	assert.Contains(t, body, "Weather")
	assert.Contains(t, body, `href="/search?query=redevelopment&amp;page=2"`)
	assert.NotContains(t, body, "Redevelopment draft")

	rec = s.get("/search?query=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0 result(s)")
}

func TestSubmitComment(t *testing.T) {
	s := newTestSite(t, nil)
	post := s.f.Post("Open for comments")
	other := s.f.Post("Another story")
	draft := s.f.Post("Not yet out", testutil.Draft())

	rec := s.postForm("/posts/"+itoa(post.ID)+"/comments", url.Values{
		"post":    {itoa(other.ID)},
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"content": {"Great <b>reporting</b>"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts/"+itoa(post.ID), rec.Header().Get("Location"))

	comments, err := s.db.CommentRepo().FindByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Great reporting", comments[0].Content)

	t.Run("invalid input re-renders", func(t *testing.T) {
		rec := s.postForm("/posts/"+itoa(post.ID)+"/comments", url.Values{
			"name": {"Bo"}, "email": {"not-an-email"}, "content": {""},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Enter a valid email address.")
		assert.Contains(t, rec.Body.String(), "This field is required.")
		assert.Contains(t, rec.Body.String(), `value="Bo"`)

		comments, err := s.db.CommentRepo().FindByPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)

		stored, err := s.db.PostRepo().FindByID(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.ViewsCount)
	})

	t.Run("hidden post", func(t *testing.T) {
		rec := s.postForm("/posts/"+itoa(draft.ID)+"/comments", url.Values{
			"name": {"Ada"}, "email": {"ada@example.com"}, "content": {"Hello"},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewsletter(t *testing.T) {
	s := newTestSite(t, nil)
	count := func() int64 {
		n, err := s.db.NewsletterRepo().Count(context.Background())
		require.NoError(t, err)
		return n
	}
	decode := func(rec *httptest.ResponseRecorder) newsletterResponse {
		var resp newsletterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	rec := s.postForm("/newsletter", url.Values{"email": {"reader@example.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, newsletterResponse{Message: "cannot process. Must be an AJAX XMLHttpRequest"}, decode(rec))
	assert.Zero(t, count())

	rec = s.postForm("/newsletter", url.Values{"email": {"nope"}}, "X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, newsletterResponse{Message: "cannot subscribe to the newsletter."}, decode(rec))
	assert.Zero(t, count())

	rec = s.postForm("/newsletter", url.Values{"email": {"Reader@Example.com"}}, "X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, newsletterResponse{Success: true, Message: "successfully subscribed to the newsletter."}, decode(rec))
	assert.EqualValues(t, 1, count())

	rec = s.postForm("/newsletter", url.Values{"email": {"reader@example.com"}}, "X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(rec).Success)
	assert.EqualValues(t, 1, count())
}

func TestContactForm(t *testing.T) {
	s := newTestSite(t, nil)

	rec := s.get("/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/contact"`)

	rec = s.postForm("/contact", url.Values{"name": {"Sam"}, "email": {"bad"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot submit your query. Please make sure all fields are valid.")
	assert.Contains(t, rec.Body.String(), `value="Sam"`)

	n, err := s.db.ContactRepo().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	rec = s.postForm("/contact", url.Values{
		"name": {"Sam"}, "email": {"sam@example.com"}, "subject": {"Tip"}, "message": {"Check the harbour."},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact", rec.Header().Get("Location"))

	n, err = s.db.ContactRepo().Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// the flash survives the redirect through the session cookie
	rec = s.get("/contact", rec.Result().Cookies()...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully submitted your query. We will contact you soon.")
}

func TestMediaFiles(t *testing.T) {
	s := newTestSite(t, nil)
	require.NoError(t, s.media.Put(context.Background(), "featured/pic.png", "image/png", bytes.NewReader([]byte("png-bytes"))))

	rec := s.get("/media/featured/pic.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, s.get("/media/featured/").Code)
	assert.Equal(t, http.StatusNotFound, s.get("/media/missing.png").Code)
}

func TestRateLimitedPosts(t *testing.T) {
	s := newTestSite(t, ratelimit.New(0.001, 1))
	form := url.Values{"email": {"one@example.com"}}

	rec := s.postForm("/newsletter", form, "X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.postForm("/contact", url.Values{"name": {"x"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	assert.Equal(t, http.StatusOK, s.get("/about").Code)
}

func TestFeaturedImageURL(t *testing.T) {
	s := newTestSite(t, nil)
	s.f.Post("With picture", func(p *models.Post) { p.FeaturedImage = "featured/abc.png" })
	s.f.Post("Remote picture", func(p *models.Post) { p.FeaturedImage = "https://cdn.example/x.jpg" })

	body := s.get("/").Body.String()
	assert.Contains(t, body, `src="/media/featured/abc.png"`)
	assert.Contains(t, body, `src="https://cdn.example/x.jpg"`)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", excerpt("short\n  text", 20))
	assert.Equal(t, "the quick brown...", excerpt("the quick brown fox jumps", 17))
	assert.Equal(t, "ééééé...", excerpt("éééééééééé", 5))
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/posts?page=2", pageURL("/posts", 2))
	assert.Equal(t, "/search?query=a&page=3", pageURL("/search?query=a", 3))
}
