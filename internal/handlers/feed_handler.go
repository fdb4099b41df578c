package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the personal feed of followed authors
type FeedHandler struct {
	blogs *services.BlogService
}

func NewFeedHandler(blogs *services.BlogService) *FeedHandler {
	return &FeedHandler{blogs: blogs}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

func (h *FeedHandler) GetFeed(c echo.Context) error {
	p, err := listParams(c, query.BlogSorts)
	if err != nil {
		return err
	}
	page, err := h.blogs.Feed(c.Request().Context(), viewerFrom(c), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
