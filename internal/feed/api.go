package feed

import "time"

// CalendarItem is a single availability record from the upstream
// calendar service.
type CalendarItem struct {
	FacultyID       string     `json:"facultyId"`
	Status          string     `json:"status"`
	Timestamp       string     `json:"timestamp"`
	TimestampParsed *time.Time `json:"-"`
}

// CalendarResponse models the top-level structure of the calendar
// service's response.
type CalendarResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int            `json:"page"`
		PageSize int            `json:"pageSize"`
		Total    int            `json:"total"`
		Items    []CalendarItem `json:"items"`
	} `json:"data"`
}
