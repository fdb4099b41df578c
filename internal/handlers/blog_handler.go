package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BlogHandler handles blog HTTP requests
type BlogHandler struct {
	blogs *services.BlogService
}

func NewBlogHandler(blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// RegisterPublicBlogRoutes registers reads open to anonymous viewers
func (h *BlogHandler) RegisterPublicBlogRoutes(g *echo.Group) {
	g.GET("/blogs", h.ListBlogs)
	g.GET("/blogs/:slug", h.GetBlog)
	g.GET("/users/:id/likes", h.ListLikedBlogs)
}

// RegisterBlogRoutes registers authoring routes
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group) {
	g.POST("/blogs", h.CreateBlog)
	g.PATCH("/blogs/:slug", h.UpdateBlog)
	g.DELETE("/blogs/:slug", h.DeleteBlog)
}

// CreateBlog accepts JSON or multipart form data with an optional "image" file
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	var req models.CreateBlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := readImage(c, "image")
	if err != nil {
		return err
	}

	view, err := h.blogs.Create(c.Request().Context(), getUserIDFromContext(c), req, image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *BlogHandler) UpdateBlog(c echo.Context) error {
	var req models.UpdateBlogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := readImage(c, "image")
	if err != nil {
		return err
	}

	view, err := h.blogs.Update(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"), req, image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	if err := h.blogs.Delete(c.Request().Context(), getUserIDFromContext(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BlogHandler) GetBlog(c echo.Context) error {
	view, err := h.blogs.GetBySlug(c.Request().Context(), viewerFrom(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// ListBlogs supports ?author=<id>&genre=<GENRE> on top of the list parameters
func (h *BlogHandler) ListBlogs(c echo.Context) error {
	p, err := listParams(c, query.BlogSorts)
	if err != nil {
		return err
	}
	var filter services.BlogListFilter
	if raw := c.QueryParam("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperr.New(apperr.InvalidInput, "invalid author")
		}
		filter.AuthorID = uint(id)
	}
	filter.Genre = models.Genre(c.QueryParam("genre"))

	page, err := h.blogs.List(c.Request().Context(), viewerFrom(c), filter, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *BlogHandler) ListLikedBlogs(c echo.Context) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := listParams(c, query.BlogSorts)
	if err != nil {
		return err
	}
	page, err := h.blogs.LikedBy(c.Request().Context(), viewerFrom(c), userID, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
