// Package feed ingests observations from the background sources: the
// upstream calendar service and the timetable-derived sync job.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"faculty-presence-backend/config"
	"faculty-presence-backend/internal/presence"
)

// Applier accepts observations into the presence engine. Satisfied by
// *presence.Store.
type Applier interface {
	Apply(obs presence.Observation) (presence.Record, bool)
}

// CalendarService polls the upstream calendar feed and converts its
// records into calendar-sourced observations.
type CalendarService struct {
	cfg     *config.CalendarFeedConfig
	applier Applier
	client  *http.Client
}

// NewCalendarService creates and initializes a calendar feed poller.
func NewCalendarService(cfg *config.CalendarFeedConfig, applier Applier) *CalendarService {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Calendar feed will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &CalendarService{
		cfg:     cfg,
		applier: applier,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// Run starts the polling loop.
func (s *CalendarService) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Calendar feed is disabled. Not starting.")
		return
	}
	log.Println("Starting calendar feed service...")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Calendar feed service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SyncOnce performs a single round of calendar polling and applies the
// resulting observations.
func (s *CalendarService) SyncOnce(ctx context.Context) {
	log.Println("Executing calendar sync cycle...")

	var allItems []CalendarItem
	total := 1
	pageSize := s.cfg.Request.PageSize
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			log.Printf("Error fetching calendar page %d: %v", page, err)
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		allItems = append(allItems, resp.Data.Items...)
	}

	applied := 0
	for i := range allItems {
		obs, err := s.toObservation(allItems[i])
		if err != nil {
			log.Printf("Warning: skipping calendar item for %q: %v", allItems[i].FacultyID, err)
			continue
		}
		if _, changed := s.applier.Apply(obs); changed {
			applied++
		}
	}

	log.Printf("Calendar sync cycle finished: %d/%d items applied.", applied, len(allItems))
}

// toObservation validates a calendar item and converts it into a
// calendar-sourced observation.
func (s *CalendarService) toObservation(item CalendarItem) (presence.Observation, error) {
	if item.FacultyID == "" {
		return presence.Observation{}, fmt.Errorf("missing faculty id")
	}
	status, err := presence.ParseStatus(item.Status)
	if err != nil {
		return presence.Observation{}, err
	}
	ts, err := s.parseTimestamp(item.Timestamp)
	if err != nil {
		return presence.Observation{}, err
	}
	return presence.Observation{
		Subject:    item.FacultyID,
		Status:     status,
		Source:     presence.SourceCalendar,
		ObservedAt: ts,
	}, nil
}

// parseTimestamp converts the feed's timestamp string into a time.Time,
// respecting the configured timezone.
func (s *CalendarService) parseTimestamp(tsStr string) (time.Time, error) {
	if tsStr == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	loc := time.UTC
	if s.cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(s.cfg.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to load timezone %q: %w", s.cfg.Timezone, err)
		}
	}

	layout := "2006-01-02 15:04:05" // The layout used by the calendar feed
	parsed, err := time.ParseInLocation(layout, tsStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", tsStr, err)
	}
	return parsed, nil
}

// fetchPage fetches a single page of calendar data from the upstream API.
func (s *CalendarService) fetchPage(ctx context.Context, page int) (*CalendarResponse, error) {
	payload := make(map[string]any)
	for k, v := range s.cfg.Request.Payload {
		payload[k] = v
	}
	payload["page"] = page

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Request.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range s.cfg.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var calResp CalendarResponse
	if err := json.Unmarshal(body, &calResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calendar response: %w", err)
	}

	if calResp.Code != 0 {
		return nil, fmt.Errorf("calendar API returned non-zero application code: %d", calResp.Code)
	}

	return &calResp, nil
}
