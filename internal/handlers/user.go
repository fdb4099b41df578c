package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/projection"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type profileResponse struct {
	projection.UserView
	Email string `json:"email"`
}

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) RegisterPublicUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteUser)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.users.Get(c.Request().Context(), viewerFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// GetProfile returns the caller's own account including private fields
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.users.Account(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	view, err := h.users.Get(c.Request().Context(), projection.Viewer{ID: user.ID}, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{UserView: view, Email: user.Email})
}

// UpdateProfile accepts JSON or multipart form data with an optional "avatar" file
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	avatar, err := readImage(c, "avatar")
	if err != nil {
		return err
	}
	view, err := h.users.UpdateProfile(c.Request().Context(), getUserIDFromContext(c), req, avatar)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	var req models.DeleteUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), getUserIDFromContext(c), req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchUsers matches ?search= against user names
func (h *UserHandler) SearchUsers(c echo.Context) error {
	p, err := listParams(c, query.UserSorts)
	if err != nil {
		return err
	}
	page, err := h.users.Search(c.Request().Context(), viewerFrom(c), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
