package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"restaurant-pos-backend/internal/auth"
	"restaurant-pos-backend/internal/mw"
	"restaurant-pos-backend/internal/rt"
)

// RouterConfig carries the middleware knobs the router needs.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	MenuCacheTTL    time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, tokens *auth.Tokens, gateway *rt.Gateway, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheStore := cache.New(cfg.MenuCacheTTL, 2*cfg.MenuCacheTTL)
	caching := mw.Cache(cacheStore, cfg.MenuCacheTTL)

	protect := mw.Protect(tokens)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/auth/me", protect, h.Me)
		api.POST("/auth/register", protect, mw.Require(auth.ActionManageUsers), h.Register)

		// Public: the customer-facing menu and the call-waiter button.
		api.GET("/products", caching, h.GetMenu)
		api.POST("/tables/:tableNumber/request-assistance", h.RequestAssistance)

		api.GET("/products/all", protect, mw.Require(auth.ActionViewFullMenu), h.GetAllProducts)
		api.POST("/products", protect, mw.Require(auth.ActionManageMenu), h.CreateProduct)
		api.PATCH("/products/:id/toggle", protect, mw.Require(auth.ActionManageMenu), h.ToggleProduct)

		api.GET("/tables", protect, mw.Require(auth.ActionViewTables), h.GetTables)
		api.GET("/tables/:tableNumber", protect, mw.Require(auth.ActionViewTables), h.GetTable)
		api.POST("/tables", protect, mw.Require(auth.ActionManageTables), h.CreateTable)
		api.PATCH("/tables/:id/free", protect, mw.Require(auth.ActionFreeTable), h.FreeTable)
		api.POST("/tables/:tableNumber/resolve-assistance", protect, mw.Require(auth.ActionResolveAssistance), h.ResolveAssistance)

		api.POST("/orders", protect, mw.Require(auth.ActionOpenOrder), h.OpenOrder)
		api.POST("/orders/:id/add", protect, mw.Require(auth.ActionAppendItems), h.AppendItems)
		api.PATCH("/orders/:id/status", protect, mw.Require(auth.ActionTransitionOrder), h.TransitionOrder)
		api.GET("/orders", protect, mw.Require(auth.ActionViewOrders), h.GetOrders)
		api.GET("/orders/:id", protect, mw.Require(auth.ActionViewOrders), h.GetOrder)

		api.GET("/users", protect, mw.Require(auth.ActionManageUsers), h.GetUsers)

		api.GET("/subscriptions", protect, h.GetSubscription)
		api.PUT("/subscriptions", protect, h.PutSubscription)
		api.DELETE("/subscriptions", protect, h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	// The realtime gateway authenticates for itself, before upgrading.
	r.GET("/ws", gateway.Handle)

	return r
}
