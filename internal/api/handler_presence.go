package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"faculty-presence-backend/internal/presence"
)

type observationRequest struct {
	Status     string `json:"status" binding:"required"`
	Source     string `json:"source" binding:"required"`
	ObservedAt string `json:"observedAt" binding:"required"`
}

// GetStatus handles GET /api/faculty/{faculty_id}/status. Unknown
// subjects are not an error: they read as the default unknown record.
func (h *Handler) GetStatus(c *gin.Context) {
	subject := c.Param("faculty_id")
	rec := h.presence.Get(subject)
	c.JSON(http.StatusOK, gin.H{
		"subject": subject,
		"record":  rec,
	})
}

// PostObservation handles POST /api/faculty/{faculty_id}/observations.
// A stale observation is a normal outcome reported as changed=false,
// not a failure.
func (h *Handler) PostObservation(c *gin.Context) {
	subject := c.Param("faculty_id")

	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := presence.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	source, err := presence.ParseSource(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	observedAt, err := time.Parse(time.RFC3339, req.ObservedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'observedAt' timestamp format. Use RFC3339."})
		return
	}
	if observedAt.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observedAt must be a valid timestamp"})
		return
	}

	rec, changed := h.presence.Apply(presence.Observation{
		Subject:    subject,
		Status:     status,
		Source:     source,
		ObservedAt: observedAt.UTC(),
	})

	c.JSON(http.StatusOK, gin.H{
		"subject": subject,
		"changed": changed,
		"record":  rec,
	})
}

// RequestUpdate handles POST /api/faculty/{faculty_id}/request-update.
// A throttled request is a normal outcome, so the response is always
// 200 with accepted=false and a retry hint when the window is spent.
func (h *Handler) RequestUpdate(c *gin.Context) {
	subject := c.Param("faculty_id")

	result := h.limiter.Request(subject)
	if result.Accepted && h.notifier != nil {
		// Fire-and-forget: the ping is a convenience, not a guarantee.
		if !h.notifier.TryDispatch(subject) {
			log.Printf("Notification queue full; dropping update-request ping for %s", subject)
		}
	}

	c.JSON(http.StatusOK, result)
}

// GetAvailability handles GET /api/faculty/{faculty_id}/availability?at=...
func (h *Handler) GetAvailability(c *gin.Context) {
	subject := c.Param("faculty_id")

	atParam := c.Query("at")
	if atParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'at' is required"})
		return
	}
	at, err := time.Parse(time.RFC3339, atParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp format. Use RFC3339."})
		return
	}

	c.JSON(http.StatusOK, h.resolver.Resolve(c.Request.Context(), subject, at))
}
