package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
	"gorm.io/gorm"
)

// Repositories bundles every repository bound to one connection or
// transaction.
type Repositories struct {
	Users         UserRepository
	Blogs         BlogRepository
	Comments      CommentRepository
	Notifications NotificationRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         NewPostgresUserRepository(db),
		Blogs:         NewPostgresBlogRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// UnitOfWork runs fn with transaction-scoped repositories. A non-nil error
// from fn rolls every write back; nil commits them together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
