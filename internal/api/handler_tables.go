package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/notification"
	"restaurant-pos-backend/internal/rt"
)

// GetTables returns every table in the tenant for the staff dashboard,
// ordered by number.
func (h *Handler) GetTables(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var tables []model.Table
	err := h.store.DB().
		Where("restaurant_id = ?", principal.RestaurantID).
		Order("table_number").
		Find(&tables).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// GetTable returns one table with its active order preloaded, the view a
// waiter lands on after scanning the table's code.
func (h *Handler) GetTable(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	tableNumber, ok := tableNumberParam(c)
	if !ok {
		return
	}

	var table model.Table
	err := h.store.DB().
		Preload("CurrentOrder.Items").
		Where("restaurant_id = ? AND table_number = ?", principal.RestaurantID, tableNumber).
		First(&table).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type createTableRequest struct {
	TableNumber int `json:"tableNumber" binding:"required,gt=0"`
	Capacity    int `json:"capacity" binding:"required,gt=0"`
}

// CreateTable adds a table during setup. Table numbers are unique per
// tenant.
func (h *Handler) CreateTable(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	var existing model.Table
	err := h.store.DB().
		Where("restaurant_id = ? AND table_number = ?", principal.RestaurantID, req.TableNumber).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "table already exists", "reason": "conflict"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, err)
		return
	}

	table := model.Table{
		RestaurantID: principal.RestaurantID,
		TableNumber:  req.TableNumber,
		Capacity:     req.Capacity,
		Status:       model.TableAvailable,
	}
	if err := h.store.DB().Create(&table).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// FreeTable clears a table when the customers leave. Refused while the
// current order is still active.
func (h *Handler) FreeTable(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	table, err := h.pos.FreeTable(c.Request.Context(), principal.RestaurantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// RequestAssistance is the public call-waiter endpoint: no login, just the
// table number and tenant. Raises the flag, notifies every staff socket in
// the tenant and queues an offline push for the table's watchers.
func (h *Handler) RequestAssistance(c *gin.Context) {
	tableNumber, ok := tableNumberParam(c)
	if !ok {
		return
	}
	restaurantID, ok := restaurantIDParam(c)
	if !ok {
		return
	}

	table, err := h.pos.RequestAssistance(c.Request.Context(), restaurantID, tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sender.Broadcast(restaurantID, rt.Event{Name: rt.EventTableCalling, Payload: table})
	h.pool.Dispatch(notification.Job{
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
		Message:      fmt.Sprintf("Table %d needs help!", tableNumber),
	})

	c.JSON(http.StatusOK, gin.H{"message": "staff has been notified"})
}

// ResolveAssistance clears the flag after a staff member has handled the
// call, and tells the other staff sockets it is handled.
func (h *Handler) ResolveAssistance(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	tableNumber, ok := tableNumberParam(c)
	if !ok {
		return
	}

	table, err := h.pos.ResolveAssistance(c.Request.Context(), principal.RestaurantID, tableNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sender.Broadcast(principal.RestaurantID, rt.Event{Name: rt.EventTableResolved, Payload: table})
	c.JSON(http.StatusOK, gin.H{"message": "assistance request cleared"})
}
