package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-presence-backend/internal/broadcast"
	"faculty-presence-backend/internal/presence"
	"faculty-presence-backend/internal/schedule"
	"faculty-presence-backend/internal/throttle"
)

type scheduleStub struct {
	entries []schedule.Entry
}

func (s *scheduleStub) EntriesFor(ctx context.Context, subject string, day time.Weekday) ([]schedule.Entry, error) {
	var matching []schedule.Entry
	for _, e := range s.entries {
		if e.DayOfWeek == day {
			matching = append(matching, e)
		}
	}
	return matching, nil
}

func setupPresenceRouter() (*gin.Engine, *presence.Store) {
	gin.SetMode(gin.TestMode)

	hub := broadcast.NewHub(8)
	store := presence.NewStore(hub)
	limiter := throttle.NewLimiter(5*time.Minute, 2)
	resolver := schedule.NewResolver(&scheduleStub{entries: []schedule.Entry{
		{Subject: "prof-rao", DayOfWeek: time.Monday, StartTime: "10:00", EndTime: "11:00", ActivityLabel: "Data Structures"},
	}})

	h := &Handler{presence: store, hub: hub, limiter: limiter, resolver: resolver}

	r := gin.New()
	r.GET("/api/faculty/:faculty_id/status", h.GetStatus)
	r.POST("/api/faculty/:faculty_id/observations", h.PostObservation)
	r.POST("/api/faculty/:faculty_id/request-update", h.RequestUpdate)
	r.GET("/api/faculty/:faculty_id/availability", h.GetAvailability)
	return r, store
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	return postJSONMethod(r, http.MethodPost, path, body)
}

func postJSONMethod(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGetStatusDefaultsToUnknown(t *testing.T) {
	r, _ := setupPresenceRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/faculty/prof-rao/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Subject string          `json:"subject"`
		Record  presence.Record `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "prof-rao", resp.Subject)
	assert.Equal(t, presence.StatusUnknown, resp.Record.Status)
}

func TestPostObservationValidation(t *testing.T) {
	r, _ := setupPresenceRouter()

	testCases := []struct {
		name string
		body map[string]string
	}{
		{name: "missing fields", body: map[string]string{}},
		{name: "unknown status", body: map[string]string{
			"status": "on-vacation", "source": "manual", "observedAt": "2025-03-10T09:00:00Z"}},
		{name: "unknown source", body: map[string]string{
			"status": "busy", "source": "carrier-pigeon", "observedAt": "2025-03-10T09:00:00Z"}},
		{name: "garbage timestamp", body: map[string]string{
			"status": "busy", "source": "manual", "observedAt": "yesterdayish"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(r, "/api/faculty/prof-rao/observations", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPostObservationAcceptAndStale(t *testing.T) {
	r, store := setupPresenceRouter()

	w := postJSON(r, "/api/faculty/prof-rao/observations", map[string]string{
		"status": "busy", "source": "manual", "observedAt": "2025-03-10T09:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Changed bool            `json:"changed"`
		Record  presence.Record `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Changed)
	assert.Equal(t, presence.StatusBusy, resp.Record.Status)

	// A stale observation reports changed=false with the standing record,
	// not an error status.
	w = postJSON(r, "/api/faculty/prof-rao/observations", map[string]string{
		"status": "available", "source": "student_verified", "observedAt": "2025-03-10T08:59:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Changed)
	assert.Equal(t, presence.StatusBusy, resp.Record.Status)

	rec := store.Get("prof-rao")
	assert.Equal(t, presence.StatusBusy, rec.Status)
}

func TestRequestUpdateThrottling(t *testing.T) {
	r, _ := setupPresenceRouter()

	var resp throttle.Result
	for i := 0; i < 2; i++ {
		w := postJSON(r, "/api/faculty/prof-rao/request-update", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Accepted, "request %d should pass the throttle", i)
	}

	w := postJSON(r, "/api/faculty/prof-rao/request-update", nil)
	require.Equal(t, http.StatusOK, w.Code, "a throttled request is a normal outcome, not an HTTP error")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted)
	assert.Contains(t, resp.Message, "try again after")
}

func TestGetAvailability(t *testing.T) {
	r, _ := setupPresenceRouter()

	get := func(at string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/faculty/prof-rao/availability?at=%s", at), nil)
		r.ServeHTTP(w, req)
		return w
	}

	// Missing and malformed instants are validation errors.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/faculty/prof-rao/availability", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusBadRequest, get("soon").Code)

	// 2025-03-10 is a Monday; 10:30 falls inside the lecture.
	w = get("2025-03-10T10:30:00Z")
	require.Equal(t, http.StatusOK, w.Code)
	var resp schedule.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, presence.StatusBusy, resp.Status)
	assert.Equal(t, "In Class: Data Structures", resp.Reason)

	w = get("2025-03-10T11:30:00Z")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, presence.StatusLikelyAvailable, resp.Status)
}
