package handlers

import (
	"net/http"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/anonto42/inkwell/backend/internal/query"
	"github.com/anonto42/inkwell/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the caller's inbox
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/counts", h.GetCounts)
	g.PUT("/notifications/read", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
}

// ListNotifications accepts ?status=READ|UNREAD
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	p, err := listParams(c, query.NotificationSorts)
	if err != nil {
		return err
	}
	status := models.NotificationStatus(c.QueryParam("status"))
	page, err := h.notifications.List(c.Request().Context(), getUserIDFromContext(c), status, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) GetCounts(c echo.Context) error {
	counts, err := h.notifications.Counts(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}
