// Package auth resolves bearer tokens to platform users.
package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Identity is the authenticated caller.
type Identity struct {
	ID    uint
	Email string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidCredential
	}
	return parts[1], nil
}

// Chain tries each verifier in order and returns the first identity.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	var lastErr error = ErrInvalidCredential
	for _, v := range c {
		id, err := v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrInvalidCredential) {
			lastErr = err
		}
	}
	return nil, lastErr
}
