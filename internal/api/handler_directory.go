package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"faculty-presence-backend/internal/model"
	"faculty-presence-backend/internal/presence"
)

// DepartmentResponse represents the API response for a single department.
type DepartmentResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	TotalFaculty int64  `json:"totalFaculty"`
}

// GetDepartments handles the GET /api/departments request.
func GetDepartments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var departments []model.Department
		if err := db.Find(&departments).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve departments"})
			return
		}

		type AggRow struct {
			DepartmentID int64
			TotalFaculty int64
		}
		var aggs []AggRow
		if err := db.
			Model(&model.Faculty{}).
			Select("department_id as department_id, COUNT(*) as total_faculty").
			Group("department_id").
			Scan(&aggs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate faculty"})
			return
		}

		aggMap := make(map[int64]AggRow, len(aggs))
		for _, a := range aggs {
			aggMap[a.DepartmentID] = a
		}

		responses := make([]DepartmentResponse, 0, len(departments))
		for _, d := range departments {
			a := aggMap[d.ID]
			responses = append(responses, DepartmentResponse{
				ID: d.ID, Name: d.Name,
				TotalFaculty: a.TotalFaculty,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// facultyStatusResponse is the flattened structure for the API response.
type facultyStatusResponse struct {
	model.Faculty
	Status      string    `json:"status"`
	Source      string    `json:"source"`
	SourceLabel string    `json:"sourceLabel"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetDepartmentFaculty handles GET /api/departments/{department_id}/faculty.
// Without parameters it merges each directory entry with the live
// presence record; with ?at= it serves the journaled record at a past
// instant instead.
func (h *Handler) GetDepartmentFaculty(c *gin.Context) {
	departmentID, err := strconv.ParseInt(c.Param("department_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid department ID"})
		return
	}

	atParam := c.Query("at")
	if atParam == "" {
		h.getCurrentFaculty(c, departmentID)
	} else {
		h.getHistoricalFaculty(c, departmentID, atParam)
	}
}

func (h *Handler) getCurrentFaculty(c *gin.Context, departmentID int64) {
	var faculty []model.Faculty
	if err := h.store.DB().Preload("Department").Where("department_id = ?", departmentID).Find(&faculty).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve faculty"})
		return
	}

	response := make([]facultyStatusResponse, 0, len(faculty))
	for _, f := range faculty {
		rec := h.presence.Get(f.SubjectID)
		response = append(response, facultyStatusResponse{
			Faculty:     f,
			Status:      string(rec.Status),
			Source:      string(rec.Source),
			SourceLabel: rec.SourceLabel,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) getHistoricalFaculty(c *gin.Context, departmentID int64, atParam string) {
	at, err := time.Parse(time.RFC3339, atParam)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp format. Use RFC3339."})
		return
	}
	if at.After(time.Now()) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "'at' must be in the past; use the availability endpoint for future instants"})
		return
	}

	var faculty []model.Faculty
	if err := h.store.DB().Preload("Department").Where("department_id = ?", departmentID).Find(&faculty).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve faculty"})
		return
	}

	response := make([]facultyStatusResponse, 0, len(faculty))
	for _, f := range faculty {
		row, err := h.store.HistoryAsOf(c.Request.Context(), f.SubjectID, at)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error during historical lookup"})
			return
		}

		entry := facultyStatusResponse{
			Faculty:     f,
			Status:      string(presence.StatusUnknown),
			Source:      string(presence.SourceNone),
			SourceLabel: presence.SourceNone.Label(),
		}
		if row != nil {
			src := presence.StatusSource(row.Source)
			entry.Status = row.Status
			entry.Source = row.Source
			entry.SourceLabel = src.Label()
			entry.UpdatedAt = row.ObservedAt
		}
		response = append(response, entry)
	}

	c.JSON(http.StatusOK, response)
}
