package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"faculty-presence-backend/config"
	"faculty-presence-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	db := h.store.DB()

	rateLimit := rate.Limit(10)
	if cfg.RateLimitPerSec > 0 {
		rateLimit = rate.Limit(cfg.RateLimitPerSec)
	}
	rateLimiter := mw.RateLimiter(rateLimit, 5, cfg.RequestIPHeader)

	cacheTTL := 5 * time.Minute
	if cfg.CacheTTLSeconds > 0 {
		cacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Directory read path. Department listings change rarely and
		// hit aggregation queries, so they go through the cache.
		api.GET("/departments", caching, GetDepartments(db))
		api.GET("/departments/:department_id/faculty", h.GetDepartmentFaculty)

		// Presence engine.
		api.GET("/faculty/:faculty_id/status", h.GetStatus)
		api.POST("/faculty/:faculty_id/observations", h.PostObservation)
		api.POST("/faculty/:faculty_id/request-update", h.RequestUpdate)
		api.GET("/faculty/:faculty_id/availability", h.GetAvailability)
		api.PUT("/faculty/:faculty_id/timetable", h.PutTimetable)

		// Live feed. Not rate-limit exempt: opening a stream is one request.
		api.GET("/stream", h.StreamPresence)

		// Push subscription management.
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
