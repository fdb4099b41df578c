package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/pkg/errors"
)

// Follow adds followerID -> followingID and reports whether the edge is new.
func (r *PostgresUserRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	created, err := insertEdge(ctx, r.db, &models.Follow{FollowerID: followerID, FollowingID: followingID})
	return created, errors.Wrap(err, "follow")
}

func (r *PostgresUserRepository) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	removed, err := deleteEdge(ctx, r.db, &models.Follow{}, "follower_id = ? AND following_id = ?", followerID, followingID)
	return removed, errors.Wrap(err, "unfollow")
}

func (r *PostgresUserRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, errors.Wrap(err, "follower ids")
}

// FollowingFlags marks which of userIDs the viewer follows.
func (r *PostgresUserRepository) FollowingFlags(ctx context.Context, viewerID uint, userIDs []uint) (map[uint]bool, error) {
	return memberIDs(ctx, r.db, "follows", "follower_id", viewerID, "following_id", userIDs)
}

// FollowerFlags marks which of userIDs follow the viewer.
func (r *PostgresUserRepository) FollowerFlags(ctx context.Context, viewerID uint, userIDs []uint) (map[uint]bool, error) {
	return memberIDs(ctx, r.db, "follows", "following_id", viewerID, "follower_id", userIDs)
}

func (r *PostgresUserRepository) FollowerCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, "follows", "following_id", userIDs)
}

func (r *PostgresUserRepository) FollowingCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, "follows", "follower_id", userIDs)
}
