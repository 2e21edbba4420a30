package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-pos-backend/internal/auth"
	"restaurant-pos-backend/internal/model"
)

type registerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role"`
	RestaurantID int64  `json:"restaurantId" binding:"required"`
}

// Register creates a staff account. The first deployment bootstrap creates
// the admin; afterwards the route sits behind the users:manage gate.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	role := req.Role
	if role == "" {
		role = string(auth.RoleStaff)
	}
	if _, ok := auth.ParseRole(role); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role", "reason": "validation"})
		return
	}

	var existing model.User
	err := h.store.DB().Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists", "reason": "conflict"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := model.User{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.store.DB().Create(&user).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and sets the session cookie used by both the
// HTTP and realtime surfaces.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "validation"})
		return
	}

	var user model.User
	err := h.store.DB().Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		// Generic message so login failures never leak account existence.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "reason": "unauthenticated"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	role, ok := auth.ParseRole(user.Role)
	if !ok {
		respondError(c, errors.New("stored role is invalid"))
		return
	}

	token, err := h.tokens.Issue(auth.Principal{
		UserID:       user.ID,
		Role:         role,
		RestaurantID: user.RestaurantID,
	}, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(auth.SessionCookie, token, int(h.tokens.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me returns the account behind the current session, for clients
// re-validating a stored credential on startup.
func (h *Handler) Me(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var user model.User
	if err := h.store.DB().First(&user, principal.UserID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
