package auth

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const DefaultTokenTTL = 72 * time.Hour

// JWTVerifier issues and checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), now: time.Now}
}

func (v *JWTVerifier) Issue(user *models.User, ttl time.Duration) (string, error) {
	now := v.now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	return signed, errors.Wrap(err, "sign token")
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	claims := &models.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == 0 {
		return nil, ErrInvalidCredential
	}
	return &Identity{ID: claims.UserID, Email: claims.Email}, nil
}
