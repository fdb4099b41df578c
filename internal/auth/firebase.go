package auth

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserStore is the slice of the user repository Firebase sign-in needs.
type UserStore interface {
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// FirebaseVerifier accepts Firebase ID tokens. Unknown Firebase accounts
// are linked to an existing user by email or created on first sight.
type FirebaseVerifier struct {
	client tokenVerifier
	users  UserStore
}

func NewFirebaseVerifier(client tokenVerifier, users UserStore) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	user, err := v.resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: user.ID, Email: user.Email}, nil
}

func (v *FirebaseVerifier) resolve(ctx context.Context, t *fbauth.Token) (*models.User, error) {
	user, err := v.users.GetUserByFirebaseUID(ctx, t.UID)
	if err == nil {
		return user, nil
	}
	if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	email, _ := t.Claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidCredential
	}
	uid := t.UID

	user, err = v.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		if err := v.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case apperr.Is(err, apperr.NotFound):
		name, _ := t.Claims["name"].(string)
		if name == "" {
			name = email
		}
		verified, _ := t.Claims["email_verified"].(bool)
		user = &models.User{Name: name, Email: email, FirebaseUID: &uid, IsVerified: verified}
		if err := v.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	default:
		return nil, err
	}
}
