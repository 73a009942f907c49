package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
	"github.com/pkruglov/shopfloor-bot/pkg/rest/response"
)

type User struct {
	db  *sqlite.DB
	log *logrus.Logger
}

func NewUserHandler(db *sqlite.DB, log *logrus.Logger) *User {
	return &User{db: db, log: log}
}

func (h *User) EnrichRoutes(router *gin.Engine, manage gin.HandlerFunc) {
	userRoutes := router.Group("/users")
	userRoutes.GET("", h.listUsersAction)
	userRoutes.GET("/:userID", h.getUserAction)
	userRoutes.PUT("/:userID", manage, h.updateUserAction)
}

func (h *User) listUsersAction(c *gin.Context) {
	var role models.Role
	if v := c.Query("role"); v != "" {
		r, ok := models.ParseRole(v)
		if !ok {
			response.HandleError(response.NewBadRequestError("unknown role"), c)
			return
		}
		role = r
	}
	list, err := h.db.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.log.WithError(err).Error("list users")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (h *User) getUserAction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("user id must be an integer"), c)
		return
	}
	u, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateUserForm struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// updateUserAction is how employees become managers: first contact
// over the bot registers everyone as an employee, the role is raised
// here.
func (h *User) updateUserAction(c *gin.Context) {
	const op = "handlers.User.updateUserAction"
	log := h.log.WithField("operation", op)

	id, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("user id must be an integer"), c)
		return
	}
	var form updateUserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	u, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	if form.FullName != nil {
		u.FullName = *form.FullName
	}
	if form.Role != nil {
		r, ok := models.ParseRole(*form.Role)
		if !ok {
			response.HandleError(response.NewBadRequestError("unknown role"), c)
			return
		}
		u.Role = r
	}
	if form.IsActive != nil {
		u.IsActive = *form.IsActive
	}
	if err := h.db.UpdateUser(c.Request.Context(), u); err != nil {
		log.WithError(err).Error("update user")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, u)
}
