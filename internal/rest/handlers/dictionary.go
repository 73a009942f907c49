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

// Dictionary serves the reference data behind task creation:
// workshops, equipment and products with their compatibility links.
type Dictionary struct {
	db  *sqlite.DB
	log *logrus.Logger
}

func NewDictionaryHandler(db *sqlite.DB, log *logrus.Logger) *Dictionary {
	return &Dictionary{db: db, log: log}
}

func (h *Dictionary) EnrichRoutes(router *gin.Engine, manage gin.HandlerFunc) {
	workshopRoutes := router.Group("/workshops")
	workshopRoutes.GET("", h.listWorkshopsAction)
	workshopRoutes.POST("", manage, h.createWorkshopAction)
	workshopRoutes.DELETE("/:workshopID", manage, h.deleteWorkshopAction)

	equipmentRoutes := router.Group("/equipment")
	equipmentRoutes.GET("", h.listEquipmentAction)
	equipmentRoutes.POST("", manage, h.createEquipmentAction)
	equipmentRoutes.PUT("/:equipmentID", manage, h.updateEquipmentAction)
	equipmentRoutes.DELETE("/:equipmentID", manage, h.deleteEquipmentAction)

	productRoutes := router.Group("/products")
	productRoutes.GET("", h.listProductsAction)
	productRoutes.GET("/:productID/equipment", h.productEquipmentAction)
	productRoutes.POST("", manage, h.createProductAction)
	productRoutes.PUT("/:productID", manage, h.updateProductAction)
	productRoutes.DELETE("/:productID", manage, h.deleteProductAction)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("id must be an integer"), c)
		return 0, false
	}
	return id, true
}

func (h *Dictionary) listWorkshopsAction(c *gin.Context) {
	list, err := h.db.ListWorkshops(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("list workshops")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workshops": list})
}

type workshopForm struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Dictionary) createWorkshopAction(c *gin.Context) {
	var form workshopForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	id, err := h.db.CreateWorkshop(c.Request.Context(), form.Name, form.Description)
	if err != nil {
		h.log.WithError(err).Error("create workshop")
		response.HandleError(err, c)
		return
	}
	w, err := h.db.GetWorkshop(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// deleteWorkshopAction detaches the workshop's equipment instead of
// cascading into it.
func (h *Dictionary) deleteWorkshopAction(c *gin.Context) {
	id, ok := pathID(c, "workshopID")
	if !ok {
		return
	}
	if err := h.db.DeleteWorkshop(c.Request.Context(), id); err != nil {
		response.HandleError(err, c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Dictionary) listEquipmentAction(c *gin.Context) {
	list, err := h.db.ListEquipment(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("list equipment")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": list})
}

type equipmentForm struct {
	Name       string `json:"name" binding:"required"`
	Code       string `json:"code"`
	WorkshopID *int64 `json:"workshop_id"`
	IsActive   *bool  `json:"is_active"`
}

func (h *Dictionary) createEquipmentAction(c *gin.Context) {
	var form equipmentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	e := &models.Equipment{Name: form.Name, Code: form.Code, WorkshopID: form.WorkshopID, IsActive: true}
	if form.IsActive != nil {
		e.IsActive = *form.IsActive
	}
	id, err := h.db.CreateEquipment(c.Request.Context(), e)
	if err != nil {
		h.log.WithError(err).Error("create equipment")
		response.HandleError(err, c)
		return
	}
	e.ID = id
	c.JSON(http.StatusCreated, e)
}

func (h *Dictionary) updateEquipmentAction(c *gin.Context) {
	id, ok := pathID(c, "equipmentID")
	if !ok {
		return
	}
	var form equipmentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	e, err := h.db.GetEquipment(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	e.Name = form.Name
	e.Code = form.Code
	e.WorkshopID = form.WorkshopID
	if form.IsActive != nil {
		e.IsActive = *form.IsActive
	}
	if err := h.db.UpdateEquipment(c.Request.Context(), e); err != nil {
		h.log.WithError(err).Error("update equipment")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Dictionary) deleteEquipmentAction(c *gin.Context) {
	id, ok := pathID(c, "equipmentID")
	if !ok {
		return
	}
	if err := h.db.DeleteEquipment(c.Request.Context(), id); err != nil {
		response.HandleError(err, c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Dictionary) listProductsAction(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	list, err := h.db.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		h.log.WithError(err).Error("list products")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *Dictionary) productEquipmentAction(c *gin.Context) {
	id, ok := pathID(c, "productID")
	if !ok {
		return
	}
	if _, err := h.db.GetProduct(c.Request.Context(), id); err != nil {
		response.HandleError(err, c)
		return
	}
	list, err := h.db.EquipmentForProduct(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": list})
}

type productForm struct {
	Name               string  `json:"name" binding:"required"`
	Code               string  `json:"code"`
	DefaultEquipmentID *int64  `json:"default_equipment_id"`
	EquipmentIDs       []int64 `json:"equipment_ids"`
	IsActive           *bool   `json:"is_active"`
}

func (h *Dictionary) createProductAction(c *gin.Context) {
	var form productForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	p := &models.Product{Name: form.Name, Code: form.Code, DefaultEquipmentID: form.DefaultEquipmentID, IsActive: true}
	if form.IsActive != nil {
		p.IsActive = *form.IsActive
	}
	id, err := h.db.CreateProduct(c.Request.Context(), p, form.EquipmentIDs)
	if err != nil {
		h.log.WithError(err).Error("create product")
		response.HandleError(err, c)
		return
	}
	p.ID = id
	c.JSON(http.StatusCreated, p)
}

func (h *Dictionary) updateProductAction(c *gin.Context) {
	id, ok := pathID(c, "productID")
	if !ok {
		return
	}
	var form productForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.HandleError(response.NewBadRequestError(err.Error()), c)
		return
	}
	p, err := h.db.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.HandleError(err, c)
		return
	}
	p.Name = form.Name
	p.Code = form.Code
	p.DefaultEquipmentID = form.DefaultEquipmentID
	if form.IsActive != nil {
		p.IsActive = *form.IsActive
	}
	if err := h.db.UpdateProduct(c.Request.Context(), p, form.EquipmentIDs); err != nil {
		h.log.WithError(err).Error("update product")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Dictionary) deleteProductAction(c *gin.Context) {
	id, ok := pathID(c, "productID")
	if !ok {
		return
	}
	if err := h.db.DeleteProduct(c.Request.Context(), id); err != nil {
		response.HandleError(err, c)
		return
	}
	c.Status(http.StatusNoContent)
}
