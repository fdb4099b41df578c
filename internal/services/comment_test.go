package services

import (
	"testing"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	testdb.Seed(t, f.db, testdb.Blog(1, 1, "hello-world"))

	first, err := f.svc.Comments.Create(f.ctx, 2, "hello-world", models.CreateCommentRequest{Content: "great"})
	require.NoError(t, err)
	assert.Equal(t, "bo", first.User.Name)
	_, err = f.svc.Comments.Create(f.ctx, 2, "hello-world", models.CreateCommentRequest{Content: "really great"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), f.count(t, &models.Notification{}, "type = ? AND receiver_id = ?", models.NotificationPostComment, 1),
		"each comment notifies the author")

	updated, err := f.svc.Comments.Update(f.ctx, 2, first.ID, models.UpdateCommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = f.svc.Comments.Update(f.ctx, 3, first.ID, models.UpdateCommentRequest{Content: "hijack"})
	requireKind(t, err, apperr.Forbidden)
	requireKind(t, f.svc.Comments.Delete(f.ctx, 1, first.ID), apperr.Forbidden)

	page, err := f.svc.Comments.List(f.ctx, projection.Viewer{}, "hello-world", query.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)

	require.NoError(t, f.svc.Comments.Delete(f.ctx, 2, first.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Comment{}, ""))
	assert.Equal(t, int64(1), f.count(t, &models.Notification{}, ""), "notification of the deleted comment goes with it")
	requireKind(t, f.svc.Comments.Delete(f.ctx, 2, first.ID), apperr.NotFound)
}

func TestCommentOnOwnBlogDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	testdb.Seed(t, f.db, testdb.Blog(1, 1, "hello-world"))

	_, err := f.svc.Comments.Create(f.ctx, 1, "hello-world", models.CreateCommentRequest{Content: "first"})
	require.NoError(t, err)
	assert.Zero(t, f.count(t, &models.Notification{}, ""))
}

func TestCommentLikes(t *testing.T) {
	f := newFixture(t)
	testdb.Seed(t, f.db, testdb.Blog(1, 1, "hello-world"), &models.Comment{ID: 5, BlogID: 1, UserID: 2, Content: "hi"})

	view, err := f.svc.Comments.Like(f.ctx, 3, 5)
	require.NoError(t, err)
	assert.True(t, view.HasLiked)
	assert.Equal(t, int64(1), view.LikesCount)

	_, err = f.svc.Comments.Like(f.ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.count(t, &models.Notification{}, "type = ? AND receiver_id = ?", models.NotificationLikeComment, 2))

	view, err = f.svc.Comments.Unlike(f.ctx, 3, 5)
	require.NoError(t, err)
	assert.False(t, view.HasLiked)
	assert.Zero(t, view.LikesCount)

	page, err := f.svc.Comments.List(f.ctx, projection.Viewer{ID: 3}, "hello-world", query.DefaultParams())
	require.NoError(t, err)
	require.Len(t, page.Result, 1)
	assert.False(t, page.Result[0].HasLiked)

	_, err = f.svc.Comments.Like(f.ctx, 3, 404)
	requireKind(t, err, apperr.NotFound)
}

func TestCommentLikesOnDraftAreHidden(t *testing.T) {
	f := newFixture(t)
	draft := testdb.Blog(1, 3, "unreleased")
	draft.IsPublished, draft.PublishedAt = false, nil
	testdb.Seed(t, f.db, draft, &models.Comment{ID: 5, BlogID: 1, UserID: 3, Content: "note to self"})

	_, err := f.svc.Comments.Like(f.ctx, 2, 5)
	requireKind(t, err, apperr.NotFound)
	_, err = f.svc.Comments.Unlike(f.ctx, 2, 5)
	requireKind(t, err, apperr.NotFound)
	assert.Zero(t, f.count(t, &models.CommentLike{}, "comment_id = ?", 5))
	assert.Zero(t, f.count(t, &models.Notification{}, "type = ?", models.NotificationLikeComment))

	view, err := f.svc.Comments.Like(f.ctx, 3, 5)
	require.NoError(t, err)
	assert.True(t, view.HasLiked)
}
