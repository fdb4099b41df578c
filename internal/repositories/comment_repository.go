package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CommentFilter struct {
	BlogID uint
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	ListComments(ctx context.Context, filter CommentFilter, p query.Params) ([]models.Comment, int64, error)

	LikeComment(ctx context.Context, userID, commentID uint) (bool, error)
	UnlikeComment(ctx context.Context, userID, commentID uint) (bool, error)
	LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
	CommentLikeCounts(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Omit("User").Create(comment).Error
	return errors.Wrap(err, "create comment")
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, notFound(err, "comment")
	}
	return &comment, nil
}

func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Model(comment).Select("Content", "UpdatedAt").Updates(comment).Error
	return errors.Wrap(err, "update comment")
}

func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("comment_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
		return errors.Wrap(err, "delete comment notifications")
	}
	if err := db.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
		return errors.Wrap(err, "delete comment likes")
	}
	res := db.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "comment not found")
	}
	return nil
}

func (r *PostgresCommentRepository) ListComments(ctx context.Context, filter CommentFilter, p query.Params) ([]models.Comment, int64, error) {
	b := query.New[models.Comment](r.db, query.Comments).Preload("User")
	if filter.BlogID != 0 {
		b.Where("comments.blog_id = ?", filter.BlogID)
	}
	return b.Apply(p).Execute(ctx)
}
