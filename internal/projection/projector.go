// Package projection turns fetched records into viewer-relative output
// types. Flags and counts for a whole page are resolved with one batched
// query per relation, never one query per record.
package projection

import (
	"context"

	"github.com/anonto42/inkwell/backend/internal/models"
)

type BlogProbe interface {
	LikedBlogIDs(ctx context.Context, userID uint, blogIDs []uint) (map[uint]bool, error)
	BookmarkedBlogIDs(ctx context.Context, userID uint, blogIDs []uint) (map[uint]bool, error)
	LikeCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error)
	BookmarkCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error)
	CommentCounts(ctx context.Context, blogIDs []uint) (map[uint]int64, error)
}

type CommentProbe interface {
	LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
	CommentLikeCounts(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
}

type UserProbe interface {
	FollowingFlags(ctx context.Context, viewerID uint, userIDs []uint) (map[uint]bool, error)
	FollowerFlags(ctx context.Context, viewerID uint, userIDs []uint) (map[uint]bool, error)
	FollowerCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error)
	FollowingCounts(ctx context.Context, userIDs []uint) (map[uint]int64, error)
}

type Projector struct {
	blogs    BlogProbe
	comments CommentProbe
	users    UserProbe
}

func New(blogs BlogProbe, comments CommentProbe, users UserProbe) *Projector {
	return &Projector{blogs: blogs, comments: comments, users: users}
}

type flagProbe func(ctx context.Context, viewerID uint, ids []uint) (map[uint]bool, error)

// flags runs probe for a signed-in viewer. Anonymous viewers get an empty
// set without touching the store.
func flags(ctx context.Context, viewer Viewer, ids []uint, probe flagProbe) (map[uint]bool, error) {
	if viewer.Anonymous() || len(ids) == 0 {
		return map[uint]bool{}, nil
	}
	return probe(ctx, viewer.ID, ids)
}

func (p *Projector) Blogs(ctx context.Context, viewer Viewer, blogs []models.Blog) ([]BlogView, error) {
	ids := make([]uint, 0, len(blogs))
	for _, b := range blogs {
		ids = append(ids, b.ID)
	}

	liked, err := flags(ctx, viewer, ids, p.blogs.LikedBlogIDs)
	if err != nil {
		return nil, err
	}
	bookmarked, err := flags(ctx, viewer, ids, p.blogs.BookmarkedBlogIDs)
	if err != nil {
		return nil, err
	}
	likes, err := p.blogs.LikeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	bookmarks, err := p.blogs.BookmarkCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := p.blogs.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]BlogView, 0, len(blogs))
	for _, b := range blogs {
		views = append(views, BlogView{
			ID:             b.ID,
			Slug:           b.Slug,
			Title:          b.Title,
			Content:        b.Content,
			Image:          b.Image,
			Genres:         b.GenreList(),
			IsPublished:    b.IsPublished,
			Author:         Summary(b.Author),
			LikesCount:     likes[b.ID],
			BookmarksCount: bookmarks[b.ID],
			CommentsCount:  comments[b.ID],
			HasLiked:       liked[b.ID],
			HasBookmarked:  bookmarked[b.ID],
			CreatedAt:      b.CreatedAt,
			UpdatedAt:      b.UpdatedAt,
		})
	}
	return views, nil
}

func (p *Projector) Blog(ctx context.Context, viewer Viewer, blog models.Blog) (BlogView, error) {
	views, err := p.Blogs(ctx, viewer, []models.Blog{blog})
	if err != nil {
		return BlogView{}, err
	}
	return views[0], nil
}

func (p *Projector) Comments(ctx context.Context, viewer Viewer, comments []models.Comment) ([]CommentView, error) {
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	liked, err := flags(ctx, viewer, ids, p.comments.LikedCommentIDs)
	if err != nil {
		return nil, err
	}
	likes, err := p.comments.CommentLikeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:         c.ID,
			Content:    c.Content,
			BlogID:     c.BlogID,
			User:       Summary(c.User),
			LikesCount: likes[c.ID],
			HasLiked:   liked[c.ID],
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return views, nil
}

func (p *Projector) Comment(ctx context.Context, viewer Viewer, comment models.Comment) (CommentView, error) {
	views, err := p.Comments(ctx, viewer, []models.Comment{comment})
	if err != nil {
		return CommentView{}, err
	}
	return views[0], nil
}

func (p *Projector) Users(ctx context.Context, viewer Viewer, users []models.User) ([]UserView, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	followedByViewer, err := flags(ctx, viewer, ids, p.users.FollowingFlags)
	if err != nil {
		return nil, err
	}
	followsViewer, err := flags(ctx, viewer, ids, p.users.FollowerFlags)
	if err != nil {
		return nil, err
	}
	followers, err := p.users.FollowerCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	following, err := p.users.FollowingCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{
			ID:               u.ID,
			Name:             u.Name,
			Bio:              u.Bio,
			Image:            u.Image,
			IsVerified:       u.IsVerified,
			FollowersCount:   followers[u.ID],
			FollowingCount:   following[u.ID],
			FollowsViewer:    followsViewer[u.ID],
			FollowedByViewer: followedByViewer[u.ID],
			CreatedAt:        u.CreatedAt,
		})
	}
	return views, nil
}

func (p *Projector) User(ctx context.Context, viewer Viewer, user models.User) (UserView, error) {
	views, err := p.Users(ctx, viewer, []models.User{user})
	if err != nil {
		return UserView{}, err
	}
	return views[0], nil
}
