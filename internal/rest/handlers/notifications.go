package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/pkg/rest/response"
)

type Notification struct {
	db  *sqlite.DB
	log *logrus.Logger
}

func NewNotificationHandler(db *sqlite.DB, log *logrus.Logger) *Notification {
	return &Notification{db: db, log: log}
}

func (h *Notification) EnrichRoutes(router *gin.Engine) {
	notificationRoutes := router.Group("/notifications")
	notificationRoutes.GET("", h.listUnreadAction)
	notificationRoutes.PUT("/:notificationID/read", h.markReadAction)
}

func (h *Notification) listUnreadAction(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("user_id must be an integer"), c)
		return
	}
	list, err := h.db.ListUnreadNotifications(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("list notifications")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *Notification) markReadAction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("notificationID"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("notification id must be an integer"), c)
		return
	}
	if err := h.db.MarkNotificationRead(c.Request.Context(), id); err != nil {
		response.HandleError(err, c)
		return
	}
	c.Status(http.StatusNoContent)
}
