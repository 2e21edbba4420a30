package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/model"
)

// GetUsers lists the tenant's staff accounts. Password hashes never
// serialize.
func (h *Handler) GetUsers(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var users []model.User
	err := h.store.DB().
		Where("restaurant_id = ?", principal.RestaurantID).
		Order("name").
		Find(&users).Error
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}
