package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/delivery_team_backend/internal/middleware"
)

// NotificationHandler handles notification HTTP requests and live sessions.
type NotificationHandler struct {
	notificationService NotificationServiceInterface
	sessions            SessionServer
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService NotificationServiceInterface, sessions SessionServer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, sessions: sessions}
}

// List handles GET /api/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	unread, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NotificationsResponse{Notifications: notifications, UnreadCount: unread})
}

// MarkRead handles PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, NotificationEnvelope{Notification: n})
}

// MarkAllRead handles PATCH /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// Stream handles GET /api/notifications/ws. The session receives every
// notification created for the caller while it stays open.
func (h *NotificationHandler) Stream(c *gin.Context) {
	h.sessions.Serve(c.Writer, c.Request, middleware.UserID(c))
}
