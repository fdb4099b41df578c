package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, Repositories) {
	t.Helper()
	db := testdb.Open(t)
	testdb.Seed(t, db,
		testdb.User(1, "ana"), testdb.User(2, "bo"), testdb.User(3, "cy"),
		testdb.Blog(1, 1, "hello-world"), testdb.Blog(2, 2, "second"),
	)
	return db, NewRepositories(db)
}

func TestEdgesAreSets(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()

	created, err := repos.Blogs.LikeBlog(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Blogs.LikeBlog(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, created, "second like must be a no-op")

	counts, err := repos.Blogs.LikeCounts(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[1])
	assert.Equal(t, int64(0), counts[2])

	removed, err := repos.Blogs.UnlikeBlog(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repos.Blogs.UnlikeBlog(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, removed)

	followed, err := repos.Users.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, followed)
	followed, err = repos.Users.Follow(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, followed)

	bookmarked, err := repos.Blogs.BookmarkBlog(ctx, 3, 2)
	require.NoError(t, err)
	assert.True(t, bookmarked)
	bookmarked, err = repos.Blogs.BookmarkBlog(ctx, 3, 2)
	require.NoError(t, err)
	assert.False(t, bookmarked)
}

func TestProbes(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()
	testdb.Seed(t, db,
		&models.BlogLike{UserID: 3, BlogID: 2},
		&models.BlogBookmark{UserID: 3, BlogID: 1},
		&models.Follow{FollowerID: 3, FollowingID: 1},
		&models.Follow{FollowerID: 2, FollowingID: 3},
	)

	liked, err := repos.Blogs.LikedBlogIDs(ctx, 3, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{2: true}, liked)

	bookmarked, err := repos.Blogs.BookmarkedBlogIDs(ctx, 3, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: true}, bookmarked)

	following, err := repos.Users.FollowingFlags(ctx, 3, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: true}, following)

	followers, err := repos.Users.FollowerFlags(ctx, 3, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{2: true}, followers)

	stale, err := repos.Blogs.LikedBlogIDs(ctx, 999, []uint{1, 2})
	require.NoError(t, err)
	assert.Empty(t, stale)

	anonymous, err := repos.Blogs.LikedBlogIDs(ctx, 0, []uint{1, 2})
	require.NoError(t, err)
	assert.Empty(t, anonymous)

	followerCounts, err := repos.Users.FollowerCounts(ctx, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 1, 3: 1}, followerCounts)
}

func TestListBlogsFilters(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()

	draft := testdb.Blog(3, 1, "draft")
	draft.IsPublished, draft.PublishedAt = false, nil
	testdb.Seed(t, db, draft,
		&models.BlogGenre{BlogID: 2, Genre: models.GenreFood},
		&models.Follow{FollowerID: 3, FollowingID: 2},
		&models.BlogLike{UserID: 3, BlogID: 1},
	)
	p := query.DefaultParams()

	for caseName, tc := range map[string]struct {
		filter BlogFilter
		want   []uint
	}{
		"anonymous sees published":   {filter: BlogFilter{}, want: []uint{1, 2}},
		"author sees own draft":      {filter: BlogFilter{ViewerID: 1}, want: []uint{1, 2, 3}},
		"others never see the draft": {filter: BlogFilter{ViewerID: 2}, want: []uint{1, 2}},
		"by author":                  {filter: BlogFilter{AuthorID: 2}, want: []uint{2}},
		"by genre":                   {filter: BlogFilter{Genre: models.GenreFood}, want: []uint{2}},
		"feed of followed authors":   {filter: BlogFilter{FollowedBy: 3, ViewerID: 3}, want: []uint{2}},
		"liked by":                   {filter: BlogFilter{LikedBy: 3}, want: []uint{1}},
		"bookmarked by nobody":       {filter: BlogFilter{BookmarkedBy: 3}, want: []uint{}},
	} {
		t.Run(caseName, func(t *testing.T) {
			items, count, err := repos.Blogs.ListBlogs(ctx, tc.filter, p)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), count)
			ids := []uint{}
			for _, b := range items {
				ids = append(ids, b.ID)
			}
			assert.ElementsMatch(t, tc.want, ids)
		})
	}
}

func TestDeleteBlogCascades(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()
	blogID := uint(1)
	testdb.Seed(t, db,
		&models.Comment{ID: 1, BlogID: 1, UserID: 2, Content: "nice"},
		&models.CommentLike{UserID: 3, CommentID: 1},
		&models.BlogLike{UserID: 2, BlogID: 1},
		&models.BlogBookmark{UserID: 3, BlogID: 1},
		&models.BlogGenre{BlogID: 1, Genre: models.GenreTechnology},
		&models.Notification{Type: models.NotificationLikeBlog, Status: models.StatusUnread, SenderID: 2, ReceiverID: 1, BlogID: &blogID},
	)

	require.NoError(t, repos.Blogs.DeleteBlog(ctx, 1))

	for _, model := range []any{&models.Comment{}, &models.CommentLike{}, &models.BlogLike{}, &models.BlogBookmark{}, &models.BlogGenre{}, &models.Notification{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}

	_, err := repos.Blogs.GetBlogBySlug(ctx, "hello-world")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.True(t, apperr.Is(repos.Blogs.DeleteBlog(ctx, 1), apperr.NotFound))

	_, err = repos.Blogs.GetBlogBySlug(ctx, "second")
	assert.NoError(t, err)
}

func TestDeleteUserAndAuthoredBlogs(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()

	withImage := testdb.Blog(3, 1, "with-image")
	withImage.ImageKey = "blogs/abc.png"
	testdb.Seed(t, db, withImage,
		&models.Follow{FollowerID: 1, FollowingID: 2},
		&models.Follow{FollowerID: 3, FollowingID: 1},
		&models.BlogLike{UserID: 1, BlogID: 2},
		&models.Comment{ID: 5, BlogID: 2, UserID: 1, Content: "mine"},
		&models.Notification{Type: models.NotificationFollowUser, Status: models.StatusUnread, SenderID: 3, ReceiverID: 1},
	)

	keys, err := repos.Blogs.DeleteBlogsByAuthor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"blogs/abc.png"}, keys)
	require.NoError(t, repos.Users.DeleteUser(ctx, 1))

	var blogs, follows, comments, notifications int64
	db.Model(&models.Blog{}).Count(&blogs)
	db.Model(&models.Follow{}).Count(&follows)
	db.Model(&models.Comment{}).Count(&comments)
	db.Model(&models.Notification{}).Count(&notifications)
	assert.Equal(t, int64(1), blogs)
	assert.Zero(t, follows)
	assert.Zero(t, comments)
	assert.Zero(t, notifications)

	assert.True(t, apperr.Is(repos.Users.DeleteUser(ctx, 1), apperr.NotFound))
}

func TestUnitOfWorkRollsBack(t *testing.T) {
	db, _ := setup(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()
	boom := errors.New("storage down")

	err := uow.Do(ctx, func(r Repositories) error {
		if err := r.Blogs.CreateBlog(ctx, &models.Blog{Slug: "test", Title: "Test", Content: "X", AuthorID: 1}); err != nil {
			return err
		}
		if _, err := r.Blogs.LikeBlog(ctx, 2, 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	repos := NewRepositories(db)
	_, err = repos.Blogs.GetBlogBySlug(ctx, "test")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	counts, err := repos.Blogs.LikeCounts(ctx, []uint{1})
	require.NoError(t, err)
	assert.Zero(t, counts[1])
}

func TestUnitOfWorkCommits(t *testing.T) {
	db, _ := setup(t)
	ctx := context.Background()

	err := NewUnitOfWork(db).Do(ctx, func(r Repositories) error {
		return r.Blogs.CreateBlog(ctx, &models.Blog{
			Slug: "committed", Title: "Committed", Content: "X", AuthorID: 1,
			Genres: []models.BlogGenre{{Genre: models.GenreScience}, {Genre: models.GenreHealth}},
		})
	})
	require.NoError(t, err)

	blog, err := NewRepositories(db).Blogs.GetBlogBySlug(ctx, "committed")
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Genre{models.GenreScience, models.GenreHealth}, blog.GenreList())
	assert.Equal(t, "ana", blog.Author.Name)
}

func TestNotificationDedupConstraint(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()
	blogID := uint(1)
	key := models.DedupKey(models.NotificationLikeBlog, 2, 1, &blogID, nil)

	newNotification := func() *models.Notification {
		k := key
		return &models.Notification{
			Type: models.NotificationLikeBlog, Status: models.StatusUnread,
			SenderID: 2, ReceiverID: 1, BlogID: &blogID, DedupKey: &k,
		}
	}

	created, err := repos.Notifications.CreateNotification(ctx, newNotification())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Notifications.CreateNotification(ctx, newNotification())
	require.NoError(t, err)
	assert.False(t, created)

	exists, err := repos.Notifications.DedupKeyExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	unread, err := repos.Notifications.CountByStatus(ctx, 1, models.StatusUnread)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestMarkReadChecksOwnership(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()
	n := &models.Notification{Type: models.NotificationFollowUser, Status: models.StatusUnread, SenderID: 2, ReceiverID: 1}
	testdb.Seed(t, db, n)

	ok, err := repos.Notifications.MarkRead(ctx, n.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repos.Notifications.MarkRead(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// already read still matches
	ok, err = repos.Notifications.MarkRead(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
