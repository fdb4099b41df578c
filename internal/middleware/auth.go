package middleware

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const identityKey = "identity"

// RequireIdentity rejects requests without a valid bearer token and stores
// the resolved identity in the echo context.
func RequireIdentity(v auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolve(c, v)
			switch {
			case errors.Is(err, auth.ErrMissingCredential):
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			case errors.Is(err, auth.ErrInvalidCredential):
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			case err != nil:
				return err
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// OptionalIdentity resolves the caller when a token is present. Missing or
// rejected tokens continue as an anonymous viewer.
func OptionalIdentity(v auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolve(c, v)
			switch {
			case errors.Is(err, auth.ErrMissingCredential), errors.Is(err, auth.ErrInvalidCredential):
			case err != nil:
				return err
			default:
				c.Set(identityKey, id)
			}
			return next(c)
		}
	}
}

func resolve(c echo.Context, v auth.Verifier) (*auth.Identity, error) {
	token, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return v.Verify(c.Request().Context(), token)
}

// IdentityFrom returns the identity stored by RequireIdentity or
// OptionalIdentity.
func IdentityFrom(c echo.Context) (*auth.Identity, bool) {
	id, ok := c.Get(identityKey).(*auth.Identity)
	return id, ok && id != nil
}
