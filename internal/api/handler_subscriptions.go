package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-pos-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint         string  `json:"endpoint" binding:"required"`
	P256DH           string  `json:"p256dh" binding:"required"`
	Auth             string  `json:"auth" binding:"required"`
	SubscribedTables []int64 `json:"subscribed_tables"`
}

// PutSubscription creates or replaces a staff device's push subscription and
// its watched-table mapping.
func (h *Handler) PutSubscription(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "reason": "validation"})
		return
	}

	subscription := model.PushSubscription{
		Endpoint:     req.Endpoint,
		P256DH:       req.P256DH,
		Auth:         req.Auth,
		RestaurantID: principal.RestaurantID,
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "restaurant_id"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var tables []model.Table
		if len(req.SubscribedTables) > 0 {
			// Only tables of the caller's tenant can be watched.
			if err := tx.Where("restaurant_id = ?", principal.RestaurantID).
				Find(&tables, req.SubscribedTables).Error; err != nil {
				return err
			}
		}

		return tx.Model(&subscription).Association("Tables").Replace(&tables)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a device's push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "reason": "validation"})
		return
	}

	if err := h.store.DB().Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription returns the table ids a device currently watches.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required", "reason": "validation"})
		return
	}

	var subscription model.PushSubscription
	err := h.store.DB().Preload("Tables").First(&subscription, "endpoint = ?", endpoint).Error
	if err != nil {
		respondError(c, err)
		return
	}

	tableIDs := make([]int64, len(subscription.Tables))
	for i, table := range subscription.Tables {
		tableIDs[i] = table.ID
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_tables": tableIDs})
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
