package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserFilter narrows user lists. Zero fields are ignored.
type UserFilter struct {
	FollowersOf uint // users following this user
	FollowedBy  uint // users this user follows
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uint) error
	ListUsers(ctx context.Context, filter UserFilter, p query.Params) ([]models.User, int64, error)

	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (bool, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowingFlags(ctx context.Context, viewerID uint, userIDs []uint) (map[uint]bool, error)
	FollowerFlags(ctx context.Context, viewerID uint, userIDs []uint) (map[uint]bool, error)
	FollowerCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	FollowingCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return conflict(err, "email already registered")
	}
	return nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("Name", "Bio", "Image", "ImageKey", "IsVerified", "FirebaseUID", "UpdatedAt").
		Updates(user).Error
	return conflict(err, "firebase account already linked")
}

// DeleteUser removes the user, their edges, their comments and every
// notification they sent or received. Authored blogs must be deleted first.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	ownComments := "(SELECT id FROM comments WHERE user_id = ?)"

	steps := []struct {
		model any
		where string
		args  []any
	}{
		{&models.Notification{}, "sender_id = ? OR receiver_id = ? OR comment_id IN " + ownComments, []any{id, id, id}},
		{&models.CommentLike{}, "user_id = ? OR comment_id IN " + ownComments, []any{id, id}},
		{&models.Comment{}, "user_id = ?", []any{id}},
		{&models.BlogLike{}, "user_id = ?", []any{id}},
		{&models.BlogBookmark{}, "user_id = ?", []any{id}},
		{&models.Follow{}, "follower_id = ? OR following_id = ?", []any{id, id}},
	}
	for _, step := range steps {
		if err := db.Where(step.where, step.args...).Delete(step.model).Error; err != nil {
			return errors.Wrapf(err, "delete user %d dependents", id)
		}
	}

	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete user %d", id)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context, filter UserFilter, p query.Params) ([]models.User, int64, error) {
	b := query.New[models.User](r.db, query.Users)
	if filter.FollowersOf != 0 {
		b.Where("users.id IN (SELECT follower_id FROM follows WHERE following_id = ?)", filter.FollowersOf)
	}
	if filter.FollowedBy != 0 {
		b.Where("users.id IN (SELECT following_id FROM follows WHERE follower_id = ?)", filter.FollowedBy)
	}
	return b.Apply(p).Execute(ctx)
}
