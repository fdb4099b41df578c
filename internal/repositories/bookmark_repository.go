package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
)

func (r *PostgresBlogRepository) BookmarkBlog(ctx context.Context, userID, blogID uint) (bool, error) {
	created, err := insertEdge(ctx, r.db, &models.BlogBookmark{UserID: userID, BlogID: blogID})
	return created, errors.Wrap(err, "bookmark blog")
}

func (r *PostgresBlogRepository) UnbookmarkBlog(ctx context.Context, userID, blogID uint) (bool, error) {
	removed, err := deleteEdge(ctx, r.db, &models.BlogBookmark{}, "user_id = ? AND blog_id = ?", userID, blogID)
	return removed, errors.Wrap(err, "unbookmark blog")
}

func (r *PostgresBlogRepository) BookmarkedBlogIDs(ctx context.Context, userID uint, blogIDs []uint) (map[uint]bool, error) {
	return memberIDs(ctx, r.db, "blog_bookmarks", "user_id", userID, "blog_id", blogIDs)
}

func (r *PostgresBlogRepository) BookmarkCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, "blog_bookmarks", "blog_id", blogIDs)
}
