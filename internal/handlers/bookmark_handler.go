package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type BookmarkHandler struct {
	blogs *services.BlogService
}

func NewBookmarkHandler(blogs *services.BlogService) *BookmarkHandler {
	return &BookmarkHandler{blogs: blogs}
}

func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.POST("/blogs/:slug/bookmarks", h.BookmarkBlog)
	g.DELETE("/blogs/:slug/bookmarks", h.UnbookmarkBlog)
	g.GET("/bookmarks", h.ListBookmarks)
}

func (h *BookmarkHandler) BookmarkBlog(c echo.Context) error {
	view, err := h.blogs.Bookmark(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *BookmarkHandler) UnbookmarkBlog(c echo.Context) error {
	view, err := h.blogs.Unbookmark(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *BookmarkHandler) ListBookmarks(c echo.Context) error {
	p, err := listParams(c, query.BlogSorts)
	if err != nil {
		return err
	}
	page, err := h.blogs.Bookmarks(c.Request().Context(), viewerFrom(c), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
