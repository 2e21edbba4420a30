package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/model"
)

// GetMenu handles the public GET /api/products request: only available
// items, scoped by the restaurant query parameter. Sits behind the response
// cache.
func (h *Handler) GetMenu(c *gin.Context) {
	restaurantID, ok := restaurantIDParam(c)
	if !ok {
		return
	}

	var menu []model.Product
	err := h.store.DB().
		Where("restaurant_id = ? AND is_available = ?", restaurantID, true).
		Order("category, name").
		Find(&menu).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// GetAllProducts returns the full catalog including unavailable items, for
// kitchen and admin views.
func (h *Handler) GetAllProducts(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var products []model.Product
	err := h.store.DB().
		Where("restaurant_id = ?", principal.RestaurantID).
		Order("category, name").
		Find(&products).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
}

// CreateProduct adds a product to the master list.
func (h *Handler) CreateProduct(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	product := model.Product{
		RestaurantID: principal.RestaurantID,
		Name:         req.Name,
		Price:        req.Price,
		Category:     req.Category,
		Description:  req.Description,
		IsAvailable:  true,
	}
	if err := h.store.DB().Create(&product).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ToggleProduct flips a product's availability. Item snapshots on existing
// orders are unaffected.
func (h *Handler) ToggleProduct(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var product model.Product
	err := h.store.DB().
		Where("restaurant_id = ?", principal.RestaurantID).
		First(&product, id).Error
	if err != nil {
		respondError(c, err)
		return
	}

	product.IsAvailable = !product.IsAvailable
	if err := h.store.DB().Save(&product).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
