package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/notification"
	"restaurant-pos-backend/internal/pos"
	"restaurant-pos-backend/internal/rt"
)

type openOrderRequest struct {
	TableNumber int               `json:"tableNumber" binding:"required,gt=0"`
	Items       []pos.ItemRequest `json:"items" binding:"required,min=1"`
}

// OpenOrder starts a new tab for a table and announces it to the tenant's
// staff sockets.
func (h *Handler) OpenOrder(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req openOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	order, err := h.pos.OpenOrder(c.Request.Context(), principal.RestaurantID, req.TableNumber, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sender.Broadcast(principal.RestaurantID, rt.Event{Name: rt.EventOrderCreated, Payload: order})
	c.JSON(http.StatusCreated, order)
}

type appendItemsRequest struct {
	Items []pos.ItemRequest `json:"items" binding:"required,min=1"`
	// Version, when set, is the optimistic-concurrency token: a request
	// built from a stale read is rejected with a conflict.
	Version int64 `json:"version"`
}

// AppendItems adds lines to an open order.
func (h *Handler) AppendItems(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req appendItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	order, err := h.pos.AppendItems(c.Request.Context(), principal.RestaurantID, c.Param("id"), req.Items, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sender.Broadcast(principal.RestaurantID, rt.Event{Name: rt.EventOrderUpdated, Payload: order})
	c.JSON(http.StatusOK, order)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransitionOrder moves an order along its lifecycle. When the kitchen
// marks it ready, the table's watchers also get an offline push.
func (h *Handler) TransitionOrder(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	order, err := h.pos.Transition(c.Request.Context(), principal.RestaurantID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sender.Broadcast(principal.RestaurantID, rt.Event{Name: rt.EventOrderUpdated, Payload: order})
	if order.Status == pos.StatusReady {
		h.pool.Dispatch(notification.Job{
			RestaurantID: principal.RestaurantID,
			TableNumber:  order.TableNumber,
			Message:      fmt.Sprintf("Order for table %d is ready!", order.TableNumber),
		})
	}

	c.JSON(http.StatusOK, order)
}

// GetOrders lists the tenant's orders, newest first.
func (h *Handler) GetOrders(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var orders []model.Order
	err := h.store.DB().
		Preload("Items").
		Where("restaurant_id = ?", principal.RestaurantID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order with its items.
func (h *Handler) GetOrder(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	order, err := h.store.FindOrder(c.Request.Context(), principal.RestaurantID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
