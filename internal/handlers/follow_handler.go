package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles the follow graph between users
type FollowHandler struct {
	users *services.UserService
}

func NewFollowHandler(users *services.UserService) *FollowHandler {
	return &FollowHandler{users: users}
}

func (h *FollowHandler) RegisterPublicFollowRoutes(g *echo.Group) {
	g.GET("/users/:id/followers", h.ListFollowers)
	g.GET("/users/:id/following", h.ListFollowing)
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.users.Follow(c.Request().Context(), getUserIDFromContext(c), targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.users.Unfollow(c.Request().Context(), getUserIDFromContext(c), targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *FollowHandler) ListFollowers(c echo.Context) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := listParams(c, query.UserSorts)
	if err != nil {
		return err
	}
	page, err := h.users.Followers(c.Request().Context(), viewerFrom(c), userID, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *FollowHandler) ListFollowing(c echo.Context) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := listParams(c, query.UserSorts)
	if err != nil {
		return err
	}
	page, err := h.users.Following(c.Request().Context(), viewerFrom(c), userID, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
