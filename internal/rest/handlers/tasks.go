package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
	"github.com/pkruglov/shopfloor-bot/pkg/rest/response"
)

const dateLayout = "2006-01-02"

type Task struct {
	db  *sqlite.DB
	svc *tasks.Service
	log *logrus.Logger
}

func NewTaskHandler(db *sqlite.DB, svc *tasks.Service, log *logrus.Logger) *Task {
	return &Task{db: db, svc: svc, log: log}
}

func (h *Task) EnrichRoutes(router *gin.Engine, manage gin.HandlerFunc) {
	taskRoutes := router.Group("/tasks")
	taskRoutes.GET("", h.listTasksAction)
	taskRoutes.GET("/:taskID", h.getTaskAction)
	taskRoutes.POST("", manage, h.createTaskAction)
	taskRoutes.PUT("/:taskID", manage, h.updateTaskAction)
}

func (h *Task) listTasksAction(c *gin.Context) {
	const op = "handlers.Task.listTasksAction"
	log := h.log.WithField("operation", op)

	var f sqlite.TaskFilter
	if v := c.Query("manager_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.HandleError(response.NewBadRequestError("manager_id must be an integer"), c)
			return
		}
		f.ManagerID = &id
	}
	if v := c.Query("employee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.HandleError(response.NewBadRequestError("employee_id must be an integer"), c)
			return
		}
		f.EmployeeID = &id
	}
	if v := c.Query("status"); v != "" {
		st, ok := models.ParseStatus(v)
		if !ok {
			response.HandleError(response.NewBadRequestError("unknown status"), c)
			return
		}
		f.Status = &st
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			response.HandleError(response.NewBadRequestError("date_from must be YYYY-MM-DD"), c)
			return
		}
		f.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			response.HandleError(response.NewBadRequestError("date_to must be YYYY-MM-DD"), c)
			return
		}
		f.DateTo = &t
	}

	list, err := h.db.ListTasks(c.Request.Context(), f)
	if err != nil {
		log.WithError(err).Error("list tasks")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

func (h *Task) getTaskAction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("taskID"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("task id must be an integer"), c)
		return
	}
	t, err := h.db.GetTask(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, t)
}

type createTaskForm struct {
	ManagerID       int64   `json:"manager_id" binding:"required"`
	EmployeeID      int64   `json:"employee_id" binding:"required"`
	EquipmentID     int64   `json:"equipment_id" binding:"required"`
	ProductID       int64   `json:"product_id" binding:"required"`
	PlannedQuantity float64 `json:"planned_quantity" binding:"required"`
	Shift           int     `json:"shift" binding:"required"`
	TaskDate        string  `json:"task_date" binding:"required"`
	Notes           string  `json:"notes"`
}

func (h *Task) createTaskAction(c *gin.Context) {
	const op = "handlers.Task.createTaskAction"
	log := h.log.WithField("operation", op)

	var form createTaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	taskDate, err := time.Parse(dateLayout, form.TaskDate)
	if err != nil {
		response.HandleError(response.NewBadRequestError("task_date must be YYYY-MM-DD"), c)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), tasks.CreateInput{
		ManagerID:       form.ManagerID,
		EmployeeID:      form.EmployeeID,
		EquipmentID:     form.EquipmentID,
		ProductID:       form.ProductID,
		PlannedQuantity: form.PlannedQuantity,
		Shift:           models.Shift(form.Shift),
		TaskDate:        taskDate,
		Notes:           form.Notes,
	})
	if err != nil {
		log.WithError(err).Error("create task")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusCreated, t)
}

type updateTaskForm struct {
	Status         *string  `json:"status"`
	ActualQuantity *float64 `json:"actual_quantity"`
}

// updateTaskAction applies a status transition, an actual-quantity
// correction, or both in that order. Transitions go through the
// lifecycle service and honor the forward-only rule.
func (h *Task) updateTaskAction(c *gin.Context) {
	const op = "handlers.Task.updateTaskAction"
	log := h.log.WithField("operation", op)

	id, err := strconv.ParseInt(c.Param("taskID"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("task id must be an integer"), c)
		return
	}
	var form updateTaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	if form.Status == nil && form.ActualQuantity == nil {
		response.HandleError(response.NewBadRequestError("nothing to update"), c)
		return
	}

	var t *models.Task
	if form.Status != nil {
		st, ok := models.ParseStatus(*form.Status)
		if !ok {
			response.HandleError(response.NewBadRequestError("unknown status"), c)
			return
		}
		t, err = h.svc.UpdateStatus(c.Request.Context(), id, st)
		if err != nil {
			log.WithError(err).Warn("update status")
			response.HandleError(err, c)
			return
		}
	}
	if form.ActualQuantity != nil {
		t, err = h.svc.UpdateActual(c.Request.Context(), id, *form.ActualQuantity)
		if err != nil {
			log.WithError(err).Warn("update actual")
			response.HandleError(err, c)
			return
		}
	}
	c.JSON(http.StatusOK, t)
}
