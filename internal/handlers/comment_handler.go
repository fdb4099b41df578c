package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) RegisterPublicCommentRoutes(g *echo.Group) {
	g.GET("/blogs/:slug/comments", h.ListComments)
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/blogs/:slug/comments", h.CreateComment)
	g.PATCH("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/likes", h.LikeComment)
	g.DELETE("/comments/:id/likes", h.UnlikeComment)
}

// CreateComment handles creating a new comment on a blog
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.comments.Create(c.Request().Context(), getUserIDFromContext(c), c.Param("slug"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// ListComments handles retrieving the comments of a blog
func (h *CommentHandler) ListComments(c echo.Context) error {
	p, err := listParams(c, query.CommentSorts)
	if err != nil {
		return err
	}
	page, err := h.comments.List(c.Request().Context(), viewerFrom(c), c.Param("slug"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdateComment handles updating an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.comments.Update(c.Request().Context(), getUserIDFromContext(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// DeleteComment handles deleting a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommentHandler) LikeComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.comments.Like(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CommentHandler) UnlikeComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.comments.Unlike(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}
