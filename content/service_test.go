package content_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/newsroom-backend/cache"
	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
	"github.com/rpupo63/newsroom-backend/testutil"
)

func setup(t *testing.T) (database.Database, *testutil.Fixtures, *content.Service) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, testutil.NewFixtures(t, db), content.NewService(db.PostRepo(), nil, 0, 10)
}

func titles(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func baseTime() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestVisibleScopeMatchesPredicate(t *testing.T) {
	db, f, _ := setup(t)
	ctx := context.Background()

	f.Post("active published")
	f.Post("active draft", testutil.Draft())
	f.Post("inactive published", testutil.Inactive())
	f.Post("inactive draft", testutil.Inactive(), testutil.Draft())

	all, err := db.PostRepo().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)

	visible, err := db.PostRepo().Find(ctx, content.Visible)
	require.NoError(t, err)
	visibleIDs := map[uint]bool{}
	for _, p := range visible {
		visibleIDs[p.ID] = true
	}

	for _, p := range all {
		assert.Equal(t, content.IsVisible(p), visibleIDs[p.ID], p.Title)
	}
	assert.Equal(t, []string{"active published"}, titles(visible))
}

func TestListRecent(t *testing.T) {
	_, f, svc := setup(t)
	base := baseTime()

	f.Post("old", testutil.Published(base.Add(-3*time.Hour)))
	f.Post("new", testutil.Published(base.Add(-time.Hour)))
	f.Post("middle", testutil.Published(base.Add(-2*time.Hour)))
	f.Post("hidden", testutil.Draft())

	posts, err := svc.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "middle"}, titles(posts))
}

func TestListFeatured(t *testing.T) {
	_, f, svc := setup(t)
	ctx := context.Background()
	same := baseTime()

	t.Run("empty", func(t *testing.T) {
		featured, err := svc.ListFeatured(ctx)
		require.NoError(t, err)
		assert.Nil(t, featured.Lead)
		assert.Empty(t, featured.Others)
	})

	f.Post("quiet", testutil.Published(same), testutil.Views(1))
	f.Post("popular", testutil.Published(same), testutil.Views(50))
	f.Post("older", testutil.Published(same.Add(-time.Hour)), testutil.Views(1000))
	f.Post("oldest", testutil.Published(same.Add(-2*time.Hour)))
	f.Post("ancient", testutil.Published(same.Add(-3*time.Hour)))
	f.Post("unpublished", testutil.Draft(), testutil.Views(9999))

	t.Run("lead plus three, views break ties", func(t *testing.T) {
		featured, err := svc.ListFeatured(ctx)
		require.NoError(t, err)
		require.NotNil(t, featured.Lead)
		assert.Equal(t, "popular", featured.Lead.Title)
		assert.Equal(t, []string{"quiet", "older", "oldest"}, titles(featured.Others))
	})
}

func TestListWeeklyTop(t *testing.T) {
	_, f, svc := setup(t)
	now := baseTime()

	f.Post("yesterday", testutil.Published(now.Add(-24*time.Hour)))
	f.Post("edge", testutil.Published(now.Add(-content.WeeklyTopWindow)))
	f.Post("last month", testutil.Published(now.Add(-30*24*time.Hour)), testutil.Views(500))
	f.Post("inactive", testutil.Published(now.Add(-time.Hour)), testutil.Inactive())

	posts, err := svc.ListWeeklyTop(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"yesterday", "edge"}, titles(posts))
}

func TestListWeeklyTopLimit(t *testing.T) {
	_, f, svc := setup(t)
	now := baseTime()
	for i := 0; i < 10; i++ {
		f.Post("post", testutil.Published(now.Add(-time.Duration(i)*time.Hour)))
	}

	posts, err := svc.ListWeeklyTop(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, posts, content.WeeklyTopCount)
}

func TestListByCategoryAndTag(t *testing.T) {
	_, f, svc := setup(t)
	ctx := context.Background()
	sports := f.NewCategory("Sports")
	local := f.NewTag("local")

	f.Post("world news")
	f.Post("match report", testutil.InCategory(sports), testutil.WithTag(local))
	f.Post("match draft", testutil.InCategory(sports), testutil.Draft())
	f.Post("tagged elsewhere", testutil.WithTag(local))

	page, err := svc.ListByCategory(ctx, sports.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"match report"}, titles(page.Posts))
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.ListByTag(ctx, local.ID, 1, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"match report", "tagged elsewhere"}, titles(page.Posts))

	page, err = svc.ListByCategory(ctx, 9999, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.TotalPages)
}

func TestPagination(t *testing.T) {
	_, f, svc := setup(t)
	ctx := context.Background()
	base := baseTime()
	for _, title := range []string{"e", "d", "c", "b", "a"} {
		base = base.Add(time.Minute)
		f.Post(title, testutil.Published(base))
	}

	page, err := svc.ListPublished(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, titles(page.Posts))
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasPrevious())
	assert.True(t, page.HasNext())

	t.Run("beyond last page clamps", func(t *testing.T) {
		page, err := svc.ListPublished(ctx, 99, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, page.Number)
		assert.Equal(t, []string{"e"}, titles(page.Posts))
		assert.False(t, page.HasNext())
	})

	t.Run("zero size uses default", func(t *testing.T) {
		page, err := svc.ListPublished(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, svc.PageSize(), page.Size)
		assert.Len(t, page.Posts, 5)
	})
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-4":  1,
		"1.5": 1,
		"3":   3,
		" 2 ": 2,
	}
	for raw, want := range tests {
		assert.Equal(t, want, content.ParsePage(raw), "raw %q", raw)
	}
}

func TestParsePageSize(t *testing.T) {
	assert.Equal(t, 10, content.ParsePageSize("", 10, 100))
	assert.Equal(t, 10, content.ParsePageSize("nope", 10, 100))
	assert.Equal(t, 25, content.ParsePageSize("25", 10, 100))
	assert.Equal(t, 100, content.ParsePageSize("5000", 10, 100))
}

func TestListAllAndDrafts(t *testing.T) {
	db, f, svc := setup(t)
	ctx := context.Background()

	f.Post("live")
	draft := f.Post("draft", testutil.Draft())
	f.Post("inactive draft", testutil.Draft(), testutil.Inactive())
	f.Post("inactive", testutil.Inactive())
	gone := f.Post("deleted")
	require.NoError(t, db.PostRepo().Delete(ctx, gone.ID))

	page, err := svc.ListAll(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"inactive", "inactive draft", "draft", "live"}, titles(page.Posts))

	drafts, err := svc.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"inactive draft", "draft"}, titles(drafts))
	assert.Equal(t, draft.ID, drafts[1].ID)
}

func TestSearch(t *testing.T) {
	_, f, svc := setup(t)
	ctx := context.Background()

	f.Post("Go Release Notes")
	f.Post("Weather", testutil.Content("Gophers love GOLANG"))
	f.Post("go draft", testutil.Draft())
	f.Post("going inactive", testutil.Inactive())
	f.Post("Markets up 100% today")
	f.Post("Markets up 1000 points")
	f.Post("ÉTÉ À PARIS")
	f.Post("Festival", testutil.Content("Un été chaud à Zürich"))

	t.Run("case insensitive over title and content", func(t *testing.T) {
		page, err := svc.Search(ctx, "GO", 1, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Go Release Notes", "Weather"}, titles(page.Posts))
	})

	t.Run("non-ascii case folding", func(t *testing.T) {
		page, err := svc.Search(ctx, "été", 1, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ÉTÉ À PARIS", "Festival"}, titles(page.Posts))

		page, err = svc.Search(ctx, "ZÜRICH", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Festival"}, titles(page.Posts))
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		page, err := svc.Search(ctx, "100%", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Markets up 100% today"}, titles(page.Posts))
	})

	t.Run("blank query matches nothing", func(t *testing.T) {
		page, err := svc.Search(ctx, "   ", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
		assert.Zero(t, page.Total)
	})

	t.Run("one per page", func(t *testing.T) {
		page, err := svc.Search(ctx, "markets", 2, 1)
		require.NoError(t, err)
		assert.Len(t, page.Posts, 1)
		assert.Equal(t, 2, page.TotalPages)
	})
}

func TestGetVisible(t *testing.T) {
	_, f, svc := setup(t)
	ctx := context.Background()
	live := f.Post("live")
	draft := f.Post("draft", testutil.Draft())

	post, err := svc.GetVisible(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, "live", post.Title)
	require.NotNil(t, post.Category)
	assert.Equal(t, f.Category.Name, post.Category.Name)

	_, err = svc.GetVisible(ctx, draft.ID)
	assert.True(t, errs.IsNotFound(err))

	post, err = svc.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", post.Title)

	_, err = svc.Get(ctx, 424242)
	assert.True(t, errs.IsNotFound(err))
}

func TestRecordViewConcurrent(t *testing.T) {
	db, f, svc := setup(t)
	ctx := context.Background()
	post := f.Post("viral")

	const readers = 50
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordView(ctx, post.ID))
		}()
	}
	wg.Wait()

	stored, err := db.PostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, readers, stored.ViewsCount)

	assert.True(t, errs.IsNotFound(svc.RecordView(ctx, 999999)))
}

func TestEditKeepsConcurrentViewsAndPublication(t *testing.T) {
	db, f, svc := setup(t)
	ctx := context.Background()
	post := f.Post("draft under edit", testutil.Draft())

	loaded, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordView(ctx, post.ID))
	_, err = svc.Publish(ctx, post.ID, baseTime())
	require.NoError(t, err)

	loaded.Title = "edited headline"
	require.NoError(t, db.PostRepo().UpdateContent(ctx, loaded))

	stored, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited headline", stored.Title)
	assert.EqualValues(t, 1, stored.ViewsCount)
	require.NotNil(t, stored.PublishedAt)
	assert.True(t, baseTime().Equal(*stored.PublishedAt))
}

func TestReadPost(t *testing.T) {
	db, f, svc := setup(t)
	ctx := context.Background()

	first := f.Post("first")
	f.Post("hidden", testutil.Draft())
	middle := f.Post("middle", testutil.Views(4))
	last := f.Post("last")

	detail, err := svc.ReadPost(ctx, middle.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, detail.Post.ViewsCount)
	require.NotNil(t, detail.Previous)
	require.NotNil(t, detail.Next)
	assert.Equal(t, first.ID, detail.Previous.ID)
	assert.Equal(t, last.ID, detail.Next.ID)

	detail, err = svc.ReadPost(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Previous)

	stored, err := db.PostRepo().FindByID(ctx, middle.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stored.ViewsCount)
}

func TestReadPostHiddenDoesNotCount(t *testing.T) {
	db, f, svc := setup(t)
	ctx := context.Background()
	draft := f.Post("draft", testutil.Draft())

	_, err := svc.ReadPost(ctx, draft.ID)
	assert.True(t, errs.IsNotFound(err))

	stored, err := db.PostRepo().FindByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ViewsCount)
}

func TestPublish(t *testing.T) {
	db, f, svc := setup(t)
	ctx := context.Background()
	draft := f.Post("draft", testutil.Draft())
	now := baseTime()

	t.Run("unknown id changes nothing", func(t *testing.T) {
		_, err := svc.Publish(ctx, 987654, now)
		assert.True(t, errs.IsNotFound(err))

		n, err := db.PostRepo().Count(ctx, content.Drafts)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("publishes", func(t *testing.T) {
		post, err := svc.Publish(ctx, draft.ID, now)
		require.NoError(t, err)
		require.NotNil(t, post.PublishedAt)
		assert.WithinDuration(t, now, *post.PublishedAt, time.Second)
		assert.True(t, content.IsVisible(*post))
	})

	t.Run("publishing again moves the timestamp", func(t *testing.T) {
		later := now.Add(48 * time.Hour)
		post, err := svc.Publish(ctx, draft.ID, later)
		require.NoError(t, err)
		assert.WithinDuration(t, later, *post.PublishedAt, time.Second)
	})
}

func TestHomeFeed(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Minute, 0)
	t.Cleanup(func() { _ = mem.Close() })
	svc := content.NewService(db.PostRepo(), mem, time.Minute, 10)

	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 9; i++ {
		f.Post("post", testutil.Published(now.Add(-time.Duration(i+1)*time.Hour)))
	}

	feed, err := svc.HomeFeed(ctx, now)
	require.NoError(t, err)
	assert.Len(t, feed.Latest, content.HomeLatestCount)
	assert.Len(t, feed.Recent, content.HomeRecentCount)
	assert.Len(t, feed.WeeklyTop, content.WeeklyTopCount)
	require.NotNil(t, feed.Featured.Lead)
	assert.Len(t, feed.Featured.Others, content.FeaturedCount-1)

	t.Run("served from cache until invalidated", func(t *testing.T) {
		f.Post("breaking", testutil.Published(now))

		cached, err := svc.HomeFeed(ctx, now)
		require.NoError(t, err)
		assert.NotEqual(t, "breaking", cached.Latest[0].Title)

		svc.Invalidate(ctx)
		fresh, err := svc.HomeFeed(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, "breaking", fresh.Latest[0].Title)
	})
}
