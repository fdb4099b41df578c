package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
)

// LikeBlog adds the like edge and reports whether it was new.
func (r *PostgresBlogRepository) LikeBlog(ctx context.Context, userID, blogID uint) (bool, error) {
	created, err := insertEdge(ctx, r.db, &models.BlogLike{UserID: userID, BlogID: blogID})
	return created, errors.Wrap(err, "like blog")
}

func (r *PostgresBlogRepository) UnlikeBlog(ctx context.Context, userID, blogID uint) (bool, error) {
	removed, err := deleteEdge(ctx, r.db, &models.BlogLike{}, "user_id = ? AND blog_id = ?", userID, blogID)
	return removed, errors.Wrap(err, "unlike blog")
}

// LikedBlogIDs marks which of blogIDs userID has liked.
func (r *PostgresBlogRepository) LikedBlogIDs(ctx context.Context, userID uint, blogIDs []uint) (map[uint]bool, error) {
	return memberIDs(ctx, r.db, "blog_likes", "user_id", userID, "blog_id", blogIDs)
}

func (r *PostgresBlogRepository) LikeCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, "blog_likes", "blog_id", blogIDs)
}
