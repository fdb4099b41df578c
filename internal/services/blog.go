package services

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/gosimple/slug"
)

type BlogService struct {
	d Deps
}

// BlogListFilter holds the optional filters of the public blog list.
type BlogListFilter struct {
	AuthorID uint
	Genre    models.Genre
}

func genreSet(raw []string) ([]models.BlogGenre, []models.Genre, error) {
	seen := make(map[models.Genre]bool, len(raw))
	rows := make([]models.BlogGenre, 0, len(raw))
	list := make([]models.Genre, 0, len(raw))
	for _, r := range raw {
		g := models.Genre(r)
		if !g.Valid() {
			return nil, nil, apperr.New(apperr.InvalidInput, "unknown genre "+r)
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		rows = append(rows, models.BlogGenre{Genre: g})
		list = append(list, g)
	}
	return rows, list, nil
}

func makeSlug(title string) (string, error) {
	s := slug.Make(title)
	if s == "" {
		return "", apperr.New(apperr.InvalidInput, "title must contain letters or digits")
	}
	return s, nil
}

func (s *BlogService) announce(ctx context.Context, repos repositories.Repositories, blog *models.Blog, author *models.User) ([]*models.Notification, error) {
	followers, err := repos.Users.FollowerIDs(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	ns := make([]*models.Notification, 0, len(followers))
	for _, id := range followers {
		blogID := blog.ID
		ns = append(ns, &models.Notification{
			Type:       models.NotificationPostBlog,
			SenderID:   author.ID,
			Sender:     *author,
			ReceiverID: id,
			BlogID:     &blogID,
		})
	}
	return s.d.Engine.Create(ctx, repos.Notifications, ns...)
}

// Create stores a blog and its optional image in one unit of work. A failed
// upload rolls the row back.
func (s *BlogService) Create(ctx context.Context, authorID uint, req models.CreateBlogRequest, imageData []byte) (projection.BlogView, error) {
	img, err := sniff(imageData)
	if err != nil {
		return projection.BlogView{}, err
	}
	genres, _, err := genreSet(req.Genres)
	if err != nil {
		return projection.BlogView{}, err
	}
	blogSlug, err := makeSlug(req.Title)
	if err != nil {
		return projection.BlogView{}, err
	}

	var (
		blog     *models.Blog
		uploaded string
		created  []*models.Notification
	)
	err = s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		author, err := repos.Users.GetUserByID(ctx, authorID)
		if err != nil {
			return err
		}
		taken, err := repos.Blogs.SlugExists(ctx, blogSlug, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "a blog with this title already exists")
		}

		blog = &models.Blog{
			Slug:        blogSlug,
			Title:       req.Title,
			Content:     req.Content,
			IsPublished: req.IsPublished,
			AuthorID:    authorID,
			Genres:      genres,
		}
		if blog.IsPublished {
			now := time.Now()
			blog.PublishedAt = &now
		}
		if err := repos.Blogs.CreateBlog(ctx, blog); err != nil {
			return err
		}

		if img != nil {
			key := storage.NewKey(storage.PrefixBlogs, img.ext)
			path, err := s.d.Storage.Upload(ctx, key, img.data, img.contentType)
			if err != nil {
				return apperr.Wrap(apperr.ExternalFailure, err, "image upload failed")
			}
			uploaded = key
			blog.Image, blog.ImageKey = path, key
			if err := repos.Blogs.UpdateBlog(ctx, blog); err != nil {
				return err
			}
		}

		if blog.IsPublished {
			created, err = s.announce(ctx, repos, blog, author)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		compensate(ctx, s.d.Storage, uploaded)
		return projection.BlogView{}, err
	}

	s.d.Engine.Dispatch(ctx, created...)
	return s.view(ctx, projection.Viewer{ID: authorID}, blog.ID)
}

// Update changes the fields set in req. A new image replaces the old one,
// which is deleted after commit.
func (s *BlogService) Update(ctx context.Context, viewerID uint, blogSlug string, req models.UpdateBlogRequest, imageData []byte) (projection.BlogView, error) {
	img, err := sniff(imageData)
	if err != nil {
		return projection.BlogView{}, err
	}
	var genres []models.Genre
	if req.Genres != nil {
		if _, genres, err = genreSet(req.Genres); err != nil {
			return projection.BlogView{}, err
		}
	}

	var (
		blog     *models.Blog
		uploaded string
		replaced string
		created  []*models.Notification
	)
	err = s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		var err error
		blog, err = repos.Blogs.GetBlogBySlug(ctx, blogSlug)
		if err != nil {
			return err
		}
		if blog.AuthorID != viewerID {
			return apperr.New(apperr.Forbidden, "only the author can edit this blog")
		}
		firstPublish := blog.PublishedAt == nil

		if req.Title != nil && *req.Title != blog.Title {
			newSlug, err := makeSlug(*req.Title)
			if err != nil {
				return err
			}
			taken, err := repos.Blogs.SlugExists(ctx, newSlug, blog.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.New(apperr.Conflict, "a blog with this title already exists")
			}
			blog.Title, blog.Slug = *req.Title, newSlug
		}
		if req.Content != nil {
			blog.Content = *req.Content
		}
		if req.IsPublished != nil {
			blog.IsPublished = *req.IsPublished
		}
		if req.Genres != nil {
			if err := repos.Blogs.ReplaceGenres(ctx, blog.ID, genres); err != nil {
				return err
			}
		}
		if img != nil {
			key := storage.NewKey(storage.PrefixBlogs, img.ext)
			path, err := s.d.Storage.Upload(ctx, key, img.data, img.contentType)
			if err != nil {
				return apperr.Wrap(apperr.ExternalFailure, err, "image upload failed")
			}
			uploaded, replaced = key, blog.ImageKey
			blog.Image, blog.ImageKey = path, key
		}
		blog.UpdatedAt = time.Now()
		announce := firstPublish && blog.IsPublished
		if announce {
			published := blog.UpdatedAt
			blog.PublishedAt = &published
		}
		if err := repos.Blogs.UpdateBlog(ctx, blog); err != nil {
			return err
		}

		// POST_BLOG goes out once per blog, on its first publication.
		if announce {
			created, err = s.announce(ctx, repos, blog, &blog.Author)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		compensate(ctx, s.d.Storage, uploaded)
		return projection.BlogView{}, err
	}

	if replaced != "" {
		discard(ctx, s.d.Storage, replaced)
	}
	s.d.Engine.Dispatch(ctx, created...)
	return s.view(ctx, projection.Viewer{ID: viewerID}, blog.ID)
}

// Delete removes an owned blog with its comments, likes, bookmarks and
// notifications, then its image.
func (s *BlogService) Delete(ctx context.Context, viewerID uint, blogSlug string) error {
	var imageKey string
	err := s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		blog, err := repos.Blogs.GetBlogBySlug(ctx, blogSlug)
		if err != nil {
			return err
		}
		if blog.AuthorID != viewerID {
			return apperr.New(apperr.Forbidden, "only the author can delete this blog")
		}
		imageKey = blog.ImageKey
		return repos.Blogs.DeleteBlog(ctx, blog.ID)
	})
	if err != nil {
		return err
	}
	if imageKey != "" {
		discard(ctx, s.d.Storage, imageKey)
	}
	return nil
}

// visible loads a blog the viewer may see. Drafts are hidden from everyone
// but their author.
func (s *BlogService) visible(ctx context.Context, viewer projection.Viewer, blogSlug string) (*models.Blog, error) {
	blog, err := s.d.Repos.Blogs.GetBlogBySlug(ctx, blogSlug)
	if err != nil {
		return nil, err
	}
	return hideDraft(viewer, blog)
}

func (s *BlogService) visibleByID(ctx context.Context, viewer projection.Viewer, id uint) (*models.Blog, error) {
	blog, err := s.d.Repos.Blogs.GetBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return hideDraft(viewer, blog)
}

func hideDraft(viewer projection.Viewer, blog *models.Blog) (*models.Blog, error) {
	if !blog.IsPublished && blog.AuthorID != viewer.ID {
		return nil, apperr.New(apperr.NotFound, "blog not found")
	}
	return blog, nil
}

func (s *BlogService) view(ctx context.Context, viewer projection.Viewer, id uint) (projection.BlogView, error) {
	blog, err := s.d.Repos.Blogs.GetBlogByID(ctx, id)
	if err != nil {
		return projection.BlogView{}, err
	}
	return s.d.Projector.Blog(ctx, viewer, *blog)
}

func (s *BlogService) GetBySlug(ctx context.Context, viewer projection.Viewer, blogSlug string) (projection.BlogView, error) {
	blog, err := s.visible(ctx, viewer, blogSlug)
	if err != nil {
		return projection.BlogView{}, err
	}
	return s.d.Projector.Blog(ctx, viewer, *blog)
}

func (s *BlogService) page(ctx context.Context, viewer projection.Viewer, filter repositories.BlogFilter, p query.Params) (query.Page[projection.BlogView], error) {
	filter.ViewerID = viewer.ID
	blogs, total, err := s.d.Repos.Blogs.ListBlogs(ctx, filter, p)
	if err != nil {
		return query.Page[projection.BlogView]{}, err
	}
	views, err := s.d.Projector.Blogs(ctx, viewer, blogs)
	if err != nil {
		return query.Page[projection.BlogView]{}, err
	}
	return query.NewPage(views, total, p), nil
}

func (s *BlogService) List(ctx context.Context, viewer projection.Viewer, filter BlogListFilter, p query.Params) (query.Page[projection.BlogView], error) {
	if filter.Genre != "" && !filter.Genre.Valid() {
		return query.Page[projection.BlogView]{}, apperr.New(apperr.InvalidInput, "unknown genre "+string(filter.Genre))
	}
	return s.page(ctx, viewer, repositories.BlogFilter{AuthorID: filter.AuthorID, Genre: filter.Genre}, p)
}

// Feed lists blogs by authors the viewer follows.
func (s *BlogService) Feed(ctx context.Context, viewer projection.Viewer, p query.Params) (query.Page[projection.BlogView], error) {
	return s.page(ctx, viewer, repositories.BlogFilter{FollowedBy: viewer.ID}, p)
}

func (s *BlogService) Bookmarks(ctx context.Context, viewer projection.Viewer, p query.Params) (query.Page[projection.BlogView], error) {
	return s.page(ctx, viewer, repositories.BlogFilter{BookmarkedBy: viewer.ID}, p)
}

func (s *BlogService) LikedBy(ctx context.Context, viewer projection.Viewer, userID uint, p query.Params) (query.Page[projection.BlogView], error) {
	return s.page(ctx, viewer, repositories.BlogFilter{LikedBy: userID}, p)
}

// Like adds the viewer to the blog's likers and notifies the author once
// per like.
func (s *BlogService) Like(ctx context.Context, viewerID uint, blogSlug string) (projection.BlogView, error) {
	viewer := projection.Viewer{ID: viewerID}
	blog, err := s.visible(ctx, viewer, blogSlug)
	if err != nil {
		return projection.BlogView{}, err
	}

	var notification *models.Notification
	err = s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		added, err := repos.Blogs.LikeBlog(ctx, viewerID, blog.ID)
		if err != nil || !added {
			return err
		}
		sender, err := repos.Users.GetUserByID(ctx, viewerID)
		if err != nil {
			return err
		}
		n := &models.Notification{
			Type:       models.NotificationLikeBlog,
			SenderID:   viewerID,
			Sender:     *sender,
			ReceiverID: blog.AuthorID,
			BlogID:     &blog.ID,
		}
		created, err := s.d.Engine.CreateIfAbsent(ctx, repos.Notifications, n)
		if created {
			notification = n
		}
		return err
	})
	if err != nil {
		return projection.BlogView{}, err
	}

	s.d.Engine.Dispatch(ctx, notification)
	return s.view(ctx, viewer, blog.ID)
}

func (s *BlogService) Unlike(ctx context.Context, viewerID uint, blogSlug string) (projection.BlogView, error) {
	viewer := projection.Viewer{ID: viewerID}
	blog, err := s.visible(ctx, viewer, blogSlug)
	if err != nil {
		return projection.BlogView{}, err
	}
	if _, err := s.d.Repos.Blogs.UnlikeBlog(ctx, viewerID, blog.ID); err != nil {
		return projection.BlogView{}, err
	}
	return s.view(ctx, viewer, blog.ID)
}

func (s *BlogService) Bookmark(ctx context.Context, viewerID uint, blogSlug string) (projection.BlogView, error) {
	viewer := projection.Viewer{ID: viewerID}
	blog, err := s.visible(ctx, viewer, blogSlug)
	if err != nil {
		return projection.BlogView{}, err
	}
	if _, err := s.d.Repos.Blogs.BookmarkBlog(ctx, viewerID, blog.ID); err != nil {
		return projection.BlogView{}, err
	}
	return s.view(ctx, viewer, blog.ID)
}

func (s *BlogService) Unbookmark(ctx context.Context, viewerID uint, blogSlug string) (projection.BlogView, error) {
	viewer := projection.Viewer{ID: viewerID}
	blog, err := s.visible(ctx, viewer, blogSlug)
	if err != nil {
		return projection.BlogView{}, err
	}
	if _, err := s.d.Repos.Blogs.UnbookmarkBlog(ctx, viewerID, blog.ID); err != nil {
		return projection.BlogView{}, err
	}
	return s.view(ctx, viewer, blog.ID)
}
