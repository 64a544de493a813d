package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"faculty-presence-backend/internal/schedule"
)

type timetableEntryRequest struct {
	DayOfWeek     int    `json:"dayOfWeek"`
	StartTime     string `json:"startTime" binding:"required"`
	EndTime       string `json:"endTime" binding:"required"`
	ActivityLabel string `json:"activityLabel" binding:"required"`
}

type putTimetableRequest struct {
	Entries []timetableEntryRequest `json:"entries"`
}

// PutTimetable handles PUT /api/faculty/{faculty_id}/timetable,
// replacing the subject's recurring schedule.
func (h *Handler) PutTimetable(c *gin.Context) {
	subject := c.Param("faculty_id")

	var req putTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := make([]schedule.Entry, 0, len(req.Entries))
	for i, e := range req.Entries {
		if err := validateEntry(e); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("entry %d: %v", i, err)})
			return
		}
		entries = append(entries, schedule.Entry{
			Subject:       subject,
			DayOfWeek:     time.Weekday(e.DayOfWeek),
			StartTime:     e.StartTime,
			EndTime:       e.EndTime,
			ActivityLabel: e.ActivityLabel,
		})
	}

	if err := h.store.UpsertTimetable(c.Request.Context(), subject, entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": len(entries)})
}

func validateEntry(e timetableEntryRequest) error {
	if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
		return fmt.Errorf("dayOfWeek must be 0 (Sunday) through 6 (Saturday)")
	}
	start, err := time.Parse("15:04", e.StartTime)
	if err != nil {
		return fmt.Errorf("invalid startTime %q; use HH:MM", e.StartTime)
	}
	end, err := time.Parse("15:04", e.EndTime)
	if err != nil {
		return fmt.Errorf("invalid endTime %q; use HH:MM", e.EndTime)
	}
	if !start.Before(end) {
		return fmt.Errorf("startTime must be before endTime")
	}
	return nil
}
