package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/repositories"
	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	d Deps
}

func (s *UserService) Register(ctx context.Context, req models.CreateLocalUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.d.Repos.Users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.Conflict, "a user with this email already exists")
	} else if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := &models.User{Name: req.Name, Email: email, Password: string(hash)}
	if err := s.d.Repos.Users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, req models.SignInRequest) (*models.User, error) {
	invalid := apperr.New(apperr.Unauthorized, "invalid email or password")
	user, err := s.d.Repos.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if apperr.Is(err, apperr.NotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, invalid
	}
	return user, nil
}

// Account returns the stored user record for the caller's own use.
func (s *UserService) Account(ctx context.Context, id uint) (*models.User, error) {
	return s.d.Repos.Users.GetUserByID(ctx, id)
}

func (s *UserService) Get(ctx context.Context, viewer projection.Viewer, id uint) (projection.UserView, error) {
	user, err := s.d.Repos.Users.GetUserByID(ctx, id)
	if err != nil {
		return projection.UserView{}, err
	}
	return s.d.Projector.User(ctx, viewer, *user)
}

// UpdateProfile applies name and bio changes and an optional new avatar.
// The previous avatar is deleted after commit.
func (s *UserService) UpdateProfile(ctx context.Context, viewerID uint, req models.UpdateUserRequest, avatar []byte) (projection.UserView, error) {
	img, err := sniff(avatar)
	if err != nil {
		return projection.UserView{}, err
	}

	var uploaded, replaced string
	err = s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		user, err := repos.Users.GetUserByID(ctx, viewerID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if img != nil {
			key := storage.NewKey(storage.PrefixAvatars, img.ext)
			path, err := s.d.Storage.Upload(ctx, key, img.data, img.contentType)
			if err != nil {
				return apperr.Wrap(apperr.ExternalFailure, err, "avatar upload failed")
			}
			uploaded, replaced = key, user.ImageKey
			user.Image, user.ImageKey = path, key
		}
		user.UpdatedAt = time.Now()
		return repos.Users.UpdateUser(ctx, user)
	})
	if err != nil {
		compensate(ctx, s.d.Storage, uploaded)
		return projection.UserView{}, err
	}
	if replaced != "" {
		discard(ctx, s.d.Storage, replaced)
	}
	return s.Get(ctx, projection.Viewer{ID: viewerID}, viewerID)
}

// Delete removes the account with everything it authored once the password
// is confirmed. Stored images go after commit.
func (s *UserService) Delete(ctx context.Context, viewerID uint, req models.DeleteUserRequest) error {
	var keys []string
	err := s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		user, err := repos.Users.GetUserByID(ctx, viewerID)
		if err != nil {
			return err
		}
		if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			return apperr.New(apperr.Forbidden, "password does not match")
		}
		keys, err = repos.Blogs.DeleteBlogsByAuthor(ctx, viewerID)
		if err != nil {
			return err
		}
		if user.ImageKey != "" {
			keys = append(keys, user.ImageKey)
		}
		return repos.Users.DeleteUser(ctx, viewerID)
	})
	if err != nil {
		return err
	}
	discard(ctx, s.d.Storage, keys...)
	return nil
}

// Follow makes viewerID a follower of targetID and notifies the target the
// first time.
func (s *UserService) Follow(ctx context.Context, viewerID, targetID uint) (projection.UserView, error) {
	if viewerID == targetID {
		return projection.UserView{}, apperr.New(apperr.InvalidInput, "you cannot follow yourself")
	}

	var notification *models.Notification
	err := s.d.UnitOfWork.Do(ctx, func(repos repositories.Repositories) error {
		if _, err := repos.Users.GetUserByID(ctx, targetID); err != nil {
			return err
		}
		added, err := repos.Users.Follow(ctx, viewerID, targetID)
		if err != nil || !added {
			return err
		}
		sender, err := repos.Users.GetUserByID(ctx, viewerID)
		if err != nil {
			return err
		}
		n := &models.Notification{
			Type:       models.NotificationFollowUser,
			SenderID:   viewerID,
			Sender:     *sender,
			ReceiverID: targetID,
		}
		created, err := s.d.Engine.CreateIfAbsent(ctx, repos.Notifications, n)
		if created {
			notification = n
		}
		return err
	})
	if err != nil {
		return projection.UserView{}, err
	}

	s.d.Engine.Dispatch(ctx, notification)
	return s.Get(ctx, projection.Viewer{ID: viewerID}, targetID)
}

func (s *UserService) Unfollow(ctx context.Context, viewerID, targetID uint) (projection.UserView, error) {
	if _, err := s.d.Repos.Users.GetUserByID(ctx, targetID); err != nil {
		return projection.UserView{}, err
	}
	if _, err := s.d.Repos.Users.Unfollow(ctx, viewerID, targetID); err != nil {
		return projection.UserView{}, err
	}
	return s.Get(ctx, projection.Viewer{ID: viewerID}, targetID)
}

func (s *UserService) page(ctx context.Context, viewer projection.Viewer, filter repositories.UserFilter, p query.Params) (query.Page[projection.UserView], error) {
	users, total, err := s.d.Repos.Users.ListUsers(ctx, filter, p)
	if err != nil {
		return query.Page[projection.UserView]{}, err
	}
	views, err := s.d.Projector.Users(ctx, viewer, users)
	if err != nil {
		return query.Page[projection.UserView]{}, err
	}
	return query.NewPage(views, total, p), nil
}

// Followers lists the users following userID.
func (s *UserService) Followers(ctx context.Context, viewer projection.Viewer, userID uint, p query.Params) (query.Page[projection.UserView], error) {
	if _, err := s.d.Repos.Users.GetUserByID(ctx, userID); err != nil {
		return query.Page[projection.UserView]{}, err
	}
	return s.page(ctx, viewer, repositories.UserFilter{FollowersOf: userID}, p)
}

// Following lists the users userID follows.
func (s *UserService) Following(ctx context.Context, viewer projection.Viewer, userID uint, p query.Params) (query.Page[projection.UserView], error) {
	if _, err := s.d.Repos.Users.GetUserByID(ctx, userID); err != nil {
		return query.Page[projection.UserView]{}, err
	}
	return s.page(ctx, viewer, repositories.UserFilter{FollowedBy: userID}, p)
}

func (s *UserService) Search(ctx context.Context, viewer projection.Viewer, p query.Params) (query.Page[projection.UserView], error) {
	return s.page(ctx, viewer, repositories.UserFilter{}, p)
}
