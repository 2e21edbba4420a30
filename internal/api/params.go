package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant-pos-backend/internal/auth"
	"restaurant-pos-backend/internal/mw"
)

// principalOrAbort returns the verified principal or writes a 401. Routes
// behind Protect always have one; the check guards against miswired routes.
func principalOrAbort(c *gin.Context) (auth.Principal, bool) {
	principal, ok := mw.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return auth.Principal{}, false
	}
	return principal, true
}

// restaurantIDParam reads the tenant id public endpoints carry explicitly,
// since no principal is available there.
func restaurantIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("restaurant"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "restaurant is required", "reason": "validation"})
		return 0, false
	}
	return id, true
}

// tableNumberParam parses the :tableNumber path segment.
func tableNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("tableNumber"))
	if err != nil || n <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid table number", "reason": "validation"})
		return 0, false
	}
	return n, true
}

// idParam parses a numeric :id path segment.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id", "reason": "validation"})
		return 0, false
	}
	return id, true
}
