package services

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/repositories"
)

type CommentService struct {
	d Deps
}

func (s *CommentService) blogs() *BlogService {
	return &BlogService{d: s.d}
}

// Create adds a comment and notifies the blog author. Every comment is a
// distinct event and is never deduplicated.
func (s *CommentService) Create(ctx context.Context, viewerID uint, blogSlug string, req models.CreateCommentRequest) (projection.CommentView, error) {
	blog, err := s.blogs().visible(ctx, projection.Viewer{ID: viewerID}, blogSlug)
	if err != nil {
		return projection.CommentView{}, err
	}

	comment := &models.Comment{Content: req.Content, BlogID: blog.ID, UserID: viewerID}
	var created []*models.Notification
	err = s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		sender, err := repos.Users.GetUserByID(ctx, viewerID)
		if err != nil {
			return err
		}
		if err := repos.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		created, err = s.d.Engine.Create(ctx, repos.Notifications, &models.Notification{
			Type:       models.NotificationPostComment,
			SenderID:   viewerID,
			Sender:     *sender,
			ReceiverID: blog.AuthorID,
			BlogID:     &blog.ID,
			CommentID:  &comment.ID,
		})
		return err
	})
	if err != nil {
		return projection.CommentView{}, err
	}

	s.d.Engine.Dispatch(ctx, created...)
	return s.view(ctx, projection.Viewer{ID: viewerID}, comment.ID)
}

func (s *CommentService) owned(ctx context.Context, repos repositories.Repositories, viewerID, commentID uint) (*models.Comment, error) {
	comment, err := repos.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != viewerID {
		return nil, apperr.New(apperr.Forbidden, "only the author can change this comment")
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, viewerID, commentID uint, req models.UpdateCommentRequest) (projection.CommentView, error) {
	err := s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		comment, err := s.owned(ctx, repos, viewerID, commentID)
		if err != nil {
			return err
		}
		comment.Content = req.Content
		comment.UpdatedAt = time.Now()
		return repos.Comments.UpdateComment(ctx, comment)
	})
	if err != nil {
		return projection.CommentView{}, err
	}
	return s.view(ctx, projection.Viewer{ID: viewerID}, commentID)
}

func (s *CommentService) Delete(ctx context.Context, viewerID, commentID uint) error {
	return s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		if _, err := s.owned(ctx, repos, viewerID, commentID); err != nil {
			return err
		}
		return repos.Comments.DeleteComment(ctx, commentID)
	})
}

func (s *CommentService) List(ctx context.Context, viewer projection.Viewer, blogSlug string, p query.Params) (query.Page[projection.CommentView], error) {
	blog, err := s.blogs().visible(ctx, viewer, blogSlug)
	if err != nil {
		return query.Page[projection.CommentView]{}, err
	}
	comments, total, err := s.d.Repos.Comments.ListComments(ctx, repositories.CommentFilter{BlogID: blog.ID}, p)
	if err != nil {
		return query.Page[projection.CommentView]{}, err
	}
	views, err := s.d.Projector.Comments(ctx, viewer, comments)
	if err != nil {
		return query.Page[projection.CommentView]{}, err
	}
	return query.NewPage(views, total, p), nil
}

func (s *CommentService) Like(ctx context.Context, viewerID, commentID uint) (projection.CommentView, error) {
	if err := s.reachable(ctx, viewerID, commentID); err != nil {
		return projection.CommentView{}, err
	}

	var notification *models.Notification
	err := s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		comment, err := repos.Comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return err
		}
		added, err := repos.Comments.LikeComment(ctx, viewerID, commentID)
		if err != nil || !added {
			return err
		}
		sender, err := repos.Users.GetUserByID(ctx, viewerID)
		if err != nil {
			return err
		}
		n := &models.Notification{
			Type:       models.NotificationLikeComment,
			SenderID:   viewerID,
			Sender:     *sender,
			ReceiverID: comment.UserID,
			BlogID:     &comment.BlogID,
			CommentID:  &comment.ID,
		}
		created, err := s.d.Engine.CreateIfAbsent(ctx, repos.Notifications, n)
		if created {
			notification = n
		}
		return err
	})
	if err != nil {
		return projection.CommentView{}, err
	}

	s.d.Engine.Dispatch(ctx, notification)
	return s.view(ctx, projection.Viewer{ID: viewerID}, commentID)
}

func (s *CommentService) Unlike(ctx context.Context, viewerID, commentID uint) (projection.CommentView, error) {
	if err := s.reachable(ctx, viewerID, commentID); err != nil {
		return projection.CommentView{}, err
	}
	if _, err := s.d.Repos.Comments.UnlikeComment(ctx, viewerID, commentID); err != nil {
		return projection.CommentView{}, err
	}
	return s.view(ctx, projection.Viewer{ID: viewerID}, commentID)
}

// reachable reports NotFound for missing comments and for comments on
// someone else's draft.
func (s *CommentService) reachable(ctx context.Context, viewerID, commentID uint) error {
	comment, err := s.d.Repos.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	_, err = s.blogs().visibleByID(ctx, projection.Viewer{ID: viewerID}, comment.BlogID)
	return err
}

func (s *CommentService) view(ctx context.Context, viewer projection.Viewer, id uint) (projection.CommentView, error) {
	comment, err := s.d.Repos.Comments.GetCommentByID(ctx, id)
	if err != nil {
		return projection.CommentView{}, err
	}
	return s.d.Projector.Comment(ctx, viewer, *comment)
}
