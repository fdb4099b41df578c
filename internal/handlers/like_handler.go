package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to blog likes
type LikeHandler struct {
	blogs *services.BlogService
}

func NewLikeHandler(blogs *services.BlogService) *LikeHandler {
	return &LikeHandler{blogs: blogs}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/blogs/:slug/likes", h.LikeBlog)
	g.DELETE("/blogs/:slug/likes", h.UnlikeBlog)
}

// LikeBlog is idempotent; liking twice keeps one like
func (h *LikeHandler) LikeBlog(c echo.Context) error {
	view, err := h.blogs.Like(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *LikeHandler) UnlikeBlog(c echo.Context) error {
	view, err := h.blogs.Unlike(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}
