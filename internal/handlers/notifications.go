package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 🔔 GET /api/notifications
// Un tour de polling ; la vue garde la dernière liste si le service est injoignable.
func (h *Handler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifications.Refresh(c.Request.Context(), customerID(c)))
}

// ✅ PUT /api/notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id."})
		return
	}
	c.JSON(http.StatusOK, h.notifications.MarkRead(c.Request.Context(), customerID(c), id))
}

// ✅ PUT /api/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifications.MarkAllRead(c.Request.Context(), customerID(c)))
}
