package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/perchsocial/perch/internal/api/middleware"
	"github.com/perchsocial/perch/internal/api/response"
	"github.com/perchsocial/perch/internal/service"
)

type NotificationController struct {
	notifications *service.NotificationService
}

func NewNotificationController(notifications *service.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// List returns the caller's notifications and marks them read.
func (ctrl *NotificationController) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}

	items, err := ctrl.notifications.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Clear deletes every notification owned by the caller.
func (ctrl *NotificationController) Clear(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}

	if err := ctrl.notifications.Clear(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Notifications deleted successfully")
}
