package api

import (
	"io"

	"github.com/gin-gonic/gin"
)

// StreamPresence handles GET /api/stream?faculty_id=... as a
// Server-Sent-Events feed of accepted presence changes. An omitted
// faculty_id subscribes to all subjects. There is no replay: a client
// that reconnects should re-fetch current state from the status
// endpoint before resuming the stream.
func (h *Handler) StreamPresence(c *gin.Context) {
	sub := h.hub.Subscribe(c.Query("faculty_id"))
	defer sub.Cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Push the headers out right away so clients see the stream open
	// before the first event arrives.
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				// Dropped by the hub for falling behind.
				return false
			}
			c.SSEvent("presence", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
