package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"faculty-presence-backend/internal/broadcast"
	"faculty-presence-backend/internal/notification"
	"faculty-presence-backend/internal/presence"
	"faculty-presence-backend/internal/schedule"
	"faculty-presence-backend/internal/store"
	"faculty-presence-backend/internal/throttle"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	presence *presence.Store
	hub      *broadcast.Hub
	limiter  *throttle.Limiter
	resolver *schedule.Resolver
	notifier *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, p *presence.Store, hub *broadcast.Hub, limiter *throttle.Limiter, resolver *schedule.Resolver, notifier *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		presence: p,
		hub:      hub,
		limiter:  limiter,
		resolver: resolver,
		notifier: notifier,
		webpush:  webpushOptions,
	}
}
