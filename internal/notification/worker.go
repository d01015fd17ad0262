package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"giftguard-backend/internal/model"
	"giftguard-backend/internal/parse"
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

// Reminder is one expiry announcement for a voucher.
type Reminder struct {
	GiftconID   string
	Brand       string
	ProductName string
	DaysLeft    int
}

// Message renders the text pushed to subscribers.
func (r Reminder) Message() string {
	return fmt.Sprintf("%s %s 기프티콘 유효기간이 %s 남았습니다!", r.Brand, r.ProductName, parse.DDay(r.DaysLeft))
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Reminder
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Reminder, size),
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

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debug().Int("worker", id).Msg("notification worker started")
	for {
		select {
		case r := <-wp.jobs:
			log.Debug().Int("worker", id).Str("giftcon_id", r.GiftconID).Msg("processing reminder")
			wp.sendReminder(ctx, r)
		case <-ctx.Done():
			log.Debug().Int("worker", id).Msg("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues a reminder. It blocks while the queue is full unless ctx
// is cancelled first.
func (wp *WorkerPool) Dispatch(ctx context.Context, r Reminder) error {
	select {
	case wp.jobs <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Reminder {
	return wp.jobs
}

// sendReminder pushes r to every stored subscription.
func (wp *WorkerPool) sendReminder(ctx context.Context, r Reminder) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Error().Err(err).Str("giftcon_id", r.GiftconID).Msg("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Info().
		Int("subscriptions", len(subscriptions)).
		Str("giftcon_id", r.GiftconID).
		Int("days_left", r.DaysLeft).
		Msg("sending expiry reminder")

	payload := []byte(r.Message())
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
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
		log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
