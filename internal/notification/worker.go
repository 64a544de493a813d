package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"faculty-presence-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool delivers "a student asked for your status" pings to the
// faculty member's own devices. Delivery is fire-and-forget: a dropped
// ping is never surfaced to the requesting viewer.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case subject := <-wp.jobs:
			log.Printf("Worker %d notifying faculty %s", id, subject)
			wp.notifyFaculty(ctx, subject)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool, blocking if it is full.
func (wp *WorkerPool) Dispatch(subject string) {
	wp.jobs <- subject
}

// TryDispatch enqueues a job without blocking. Returns false when the
// queue is full and the ping was dropped.
func (wp *WorkerPool) TryDispatch(subject string) bool {
	select {
	case wp.jobs <- subject:
		return true
	default:
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// notifyFaculty fetches the faculty member's push subscriptions and
// sends the update-request ping to each registered device.
func (wp *WorkerPool) notifyFaculty(ctx context.Context, subject string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_faculty_mapping sfm ON sfm.push_subscription_endpoint = push_subscriptions.endpoint").
		Joins("JOIN faculties ON faculties.id = sfm.faculty_id").
		Where("faculties.subject_id = ?", subject).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for faculty %s: %v", subject, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d update-request pings for faculty %s", len(subscriptions), subject)

	var faculty model.Faculty
	label := subject
	if err := wp.db.WithContext(ctx).
		Select("display_name").
		First(&faculty, "subject_id = ?", subject).Error; err != nil {
		log.Printf("Error fetching faculty %s: %v", subject, err)
	} else if faculty.DisplayName != "" {
		label = faculty.DisplayName
	}

	message := fmt.Sprintf("%s, a student is asking whether you are available. Please refresh your status.", label)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
