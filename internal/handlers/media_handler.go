package handlers

import (
	"io"
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

// MediaHandler streams stored images for backends without a public URL
type MediaHandler struct {
	store storage.Storage
}

func NewMediaHandler(store storage.Storage) *MediaHandler {
	return &MediaHandler{store: store}
}

func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/media/*", h.GetMedia)
}

func (h *MediaHandler) GetMedia(c echo.Context) error {
	key := c.Param("*")
	rc, err := h.store.Download(c.Request().Context(), key)
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, storage.MaxImageSize))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, mimetype.Detect(data).String(), data)
}
