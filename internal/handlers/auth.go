package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users    *services.UserService
	issuer   *auth.JWTVerifier
	firebase auth.Verifier
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil, in which
// case firebase-login answers 501.
func NewAuthHandler(users *services.UserService, issuer *auth.JWTVerifier, firebase auth.Verifier) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, firebase: firebase}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type firebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

func (h *AuthHandler) respond(c echo.Context, status int, user *models.User) error {
	token, err := h.issuer.Issue(user, auth.DefaultTokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(status, tokenResponse{Token: token, User: user})
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, user)
}

// SignIn exchanges email and password for a token
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.Authenticate(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token, creating
// the local account on first use.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebase == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "firebase login is not configured")
	}
	var req firebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	identity, err := h.firebase.Verify(c.Request().Context(), req.IDToken)
	if err != nil {
		return apperr.Wrap(apperr.Unauthorized, err, "invalid firebase token")
	}
	user, err := h.users.Account(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, user)
}
