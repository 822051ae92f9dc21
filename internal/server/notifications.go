package server

import (
	"github.com/gin-gonic/gin"
)

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// @Summary      Unread Notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DataResponse
// @Router       /api/notifications/unread-count [get]
func (s *Server) UnreadCount(c *gin.Context) {
	count, err := s.notificationSvc.UnreadCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"unread": count})
}

// @Summary      Mark Notifications Read
// @Description  Mark the given notifications read, or all unread ones when ids is empty
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body markReadRequest false "Notification IDs"
// @Success      200  {object}  DataResponse
// @Router       /api/notifications/read [post]
func (s *Server) MarkNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.notificationSvc.MarkRead(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"updated": updated})
}
