package repositories

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogFilter narrows blog lists. Zero fields are ignored.
type BlogFilter struct {
	AuthorID     uint
	Genre        models.Genre
	LikedBy      uint
	BookmarkedBy uint
	FollowedBy   uint // only authors this user follows
	// ViewerID sees their own drafts; everyone else sees published blogs only.
	ViewerID uint
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *models.Blog) error
	GetBlogByID(ctx context.Context, id uint) (*models.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	UpdateBlog(ctx context.Context, blog *models.Blog) error
	ReplaceGenres(ctx context.Context, blogID uint, genres []models.Genre) error
	DeleteBlog(ctx context.Context, id uint) error
	DeleteBlogsByAuthor(ctx context.Context, authorID uint) ([]string, error)
	ListBlogs(ctx context.Context, filter BlogFilter, p query.Params) ([]models.Blog, int64, error)

	LikeBlog(ctx context.Context, userID, blogID uint) (bool, error)
	UnlikeBlog(ctx context.Context, userID, blogID uint) (bool, error)
	LikedBlogIDs(ctx context.Context, userID uint, blogIDs []uint) (map[uint]bool, error)
	LikeCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error)

	BookmarkBlog(ctx context.Context, userID, blogID uint) (bool, error)
	UnbookmarkBlog(ctx context.Context, userID, blogID uint) (bool, error)
	BookmarkedBlogIDs(ctx context.Context, userID uint, blogIDs []uint) (map[uint]bool, error)
	BookmarkCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error)

	CommentCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error)
}

// PostgresBlogRepository implements BlogRepository for PostgreSQL
type PostgresBlogRepository struct {
	db *gorm.DB
}

// NewPostgresBlogRepository creates a new PostgresBlogRepository
func NewPostgresBlogRepository(db *gorm.DB) *PostgresBlogRepository {
	return &PostgresBlogRepository{db: db}
}

// CreateBlog inserts the blog together with its genre tags.
func (r *PostgresBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(blog).Error; err != nil {
		return conflict(err, "a blog with this title already exists")
	}
	return nil
}

func (r *PostgresBlogRepository) GetBlogByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Genres").First(&blog, id).Error; err != nil {
		return nil, notFound(err, "blog")
	}
	return &blog, nil
}

func (r *PostgresBlogRepository) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Preload("Author").Preload("Genres").Where("slug = ?", slug).First(&blog).Error
	if err != nil {
		return nil, notFound(err, "blog")
	}
	return &blog, nil
}

func (r *PostgresBlogRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&count).Error
	return count > 0, errors.Wrap(err, "check slug")
}

func (r *PostgresBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	err := r.db.WithContext(ctx).
		Model(blog).
		Select("Slug", "Title", "Content", "Image", "ImageKey", "IsPublished", "PublishedAt", "UpdatedAt").
		Updates(blog).Error
	return conflict(err, "a blog with this title already exists")
}

func (r *PostgresBlogRepository) ReplaceGenres(ctx context.Context, blogID uint, genres []models.Genre) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("blog_id = ?", blogID).Delete(&models.BlogGenre{}).Error; err != nil {
		return errors.Wrap(err, "clear genres")
	}
	if len(genres) == 0 {
		return nil
	}
	rows := make([]models.BlogGenre, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, models.BlogGenre{BlogID: blogID, Genre: g})
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return errors.Wrap(err, "insert genres")
}

// DeleteBlog removes a blog and everything hanging off it.
func (r *PostgresBlogRepository) DeleteBlog(ctx context.Context, id uint) error {
	n, err := r.deleteBlogs(ctx, "SELECT id FROM blogs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "blog not found")
	}
	return nil
}

// DeleteBlogsByAuthor removes every blog of authorID and returns the storage
// keys of their images.
func (r *PostgresBlogRepository) DeleteBlogsByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("author_id = ? AND image_key <> ''", authorID).
		Pluck("image_key", &keys).Error
	if err != nil {
		return nil, errors.Wrap(err, "collect image keys")
	}
	if _, err := r.deleteBlogs(ctx, "SELECT id FROM blogs WHERE author_id = ?", authorID); err != nil {
		return nil, err
	}
	return keys, nil
}

// deleteBlogs deletes the blogs selected by scope in foreign key order.
func (r *PostgresBlogRepository) deleteBlogs(ctx context.Context, scope string, arg any) (int64, error) {
	db := r.db.WithContext(ctx)
	blogs := "(" + scope + ")"
	comments := "(SELECT id FROM comments WHERE blog_id IN " + blogs + ")"

	steps := []struct {
		model any
		where string
		args  []any
	}{
		{&models.Notification{}, "blog_id IN " + blogs + " OR comment_id IN " + comments, []any{arg, arg}},
		{&models.CommentLike{}, "comment_id IN " + comments, []any{arg}},
		{&models.Comment{}, "blog_id IN " + blogs, []any{arg}},
		{&models.BlogLike{}, "blog_id IN " + blogs, []any{arg}},
		{&models.BlogBookmark{}, "blog_id IN " + blogs, []any{arg}},
		{&models.BlogGenre{}, "blog_id IN " + blogs, []any{arg}},
	}
	for _, step := range steps {
		if err := db.Where(step.where, step.args...).Delete(step.model).Error; err != nil {
			return 0, errors.Wrap(err, "delete blog dependents")
		}
	}

	res := db.Where("id IN "+blogs, arg).Delete(&models.Blog{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete blogs")
}

func (r *PostgresBlogRepository) ListBlogs(ctx context.Context, filter BlogFilter, p query.Params) ([]models.Blog, int64, error) {
	b := query.New[models.Blog](r.db, query.Blogs).Preload("Author").Preload("Genres")

	if filter.ViewerID != 0 {
		b.Where("(blogs.is_published = ? OR blogs.author_id = ?)", true, filter.ViewerID)
	} else {
		b.Where("blogs.is_published = ?", true)
	}
	if filter.AuthorID != 0 {
		b.Where("blogs.author_id = ?", filter.AuthorID)
	}
	if filter.Genre != "" {
		b.Where("blogs.id IN (SELECT blog_id FROM blog_genres WHERE genre = ?)", filter.Genre)
	}
	if filter.LikedBy != 0 {
		b.Where("blogs.id IN (SELECT blog_id FROM blog_likes WHERE user_id = ?)", filter.LikedBy)
	}
	if filter.BookmarkedBy != 0 {
		b.Where("blogs.id IN (SELECT blog_id FROM blog_bookmarks WHERE user_id = ?)", filter.BookmarkedBy)
	}
	if filter.FollowedBy != 0 {
		b.Where("blogs.author_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", filter.FollowedBy)
	}
	return b.Apply(p).Execute(ctx)
}

func (r *PostgresBlogRepository) CommentCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, "comments", "blog_id", blogIDs)
}
