package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
)

// RestNotificationHandler handles REST requests for notifications.
type RestNotificationHandler struct {
	notificationService services.INotificationService
}

// NewRestNotificationHandler creates a new RestNotificationHandler.
func NewRestNotificationHandler(notificationService services.INotificationService) *RestNotificationHandler {
	return &RestNotificationHandler{notificationService: notificationService}
}

// ListUnread handles GET /v1/notifications
func (h *RestNotificationHandler) ListUnread(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notifications, err := h.notificationService.UnreadForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
