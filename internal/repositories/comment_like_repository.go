package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
)

func (r *PostgresCommentRepository) LikeComment(ctx context.Context, userID, commentID uint) (bool, error) {
	created, err := insertEdge(ctx, r.db, &models.CommentLike{UserID: userID, CommentID: commentID})
	return created, errors.Wrap(err, "like comment")
}

func (r *PostgresCommentRepository) UnlikeComment(ctx context.Context, userID, commentID uint) (bool, error) {
	removed, err := deleteEdge(ctx, r.db, &models.CommentLike{}, "user_id = ? AND comment_id = ?", userID, commentID)
	return removed, errors.Wrap(err, "unlike comment")
}

func (r *PostgresCommentRepository) LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	return memberIDs(ctx, r.db, "comment_likes", "user_id", userID, "comment_id", commentIDs)
}

func (r *PostgresCommentRepository) CommentLikeCounts(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, "comment_likes", "comment_id", commentIDs)
}
