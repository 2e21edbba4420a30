package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"restaurant-pos-backend/internal/auth"
	"restaurant-pos-backend/internal/notification"
	"restaurant-pos-backend/internal/pos"
	"restaurant-pos-backend/internal/rt"
	"restaurant-pos-backend/internal/store"
)

// Handler holds shared dependencies for API handlers. The realtime sender is
// injected rather than reached for globally, so tests can observe every
// broadcast with a fake.
type Handler struct {
	store   store.Store
	pos     *pos.Service
	tokens  *auth.Tokens
	sender  rt.Sender
	pool    *notification.WorkerPool
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, posService *pos.Service, tokens *auth.Tokens, sender rt.Sender, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		pos:     posService,
		tokens:  tokens,
		sender:  sender,
		pool:    pool,
		webpush: webpushOptions,
	}
}
