package services

import (
	"context"
	"log"
	"sync"
	"time"

	"kiloFitAPI/internal/notification"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher pushes stored notifications out through FCM on a
// small worker pool so request handlers never wait on Firebase.
type NotificationDispatcher struct {
	pushProvider PushProvider
	workers      int
	jobQueue     chan *dispatchJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type dispatchJob struct {
	notification *notification.Notification
	tokens       []notification.DeviceToken
}

func NewNotificationDispatcher() *NotificationDispatcher {
	d := &NotificationDispatcher{
		workers:  5,
		jobQueue: make(chan *dispatchJob, 100),
		stopChan: make(chan struct{}),
	}
	d.startWorkers()
	return d
}

// SetPushProvider injects the real FCM provider from main.go; tests use the
// mock below.
func (d *NotificationDispatcher) SetPushProvider(provider PushProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *dispatchJob) {
	if d.pushProvider == nil || len(job.tokens) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.notification
	if err := d.pushProvider.SendPush(ctx, job.tokens, notif.Title, notif.Message, notif.Data); err != nil {
		log.Printf("Push failed for user %s: %v", notif.UserID, err)
	}
}

// Dispatch queues a push. Dropping on a full queue is deliberate: the
// notification row is already stored and pushes are best-effort.
func (d *NotificationDispatcher) Dispatch(notif *notification.Notification, tokens []notification.DeviceToken) {
	job := &dispatchJob{notification: notif, tokens: tokens}

	select {
	case d.jobQueue <- job:
	default:
		log.Printf("Push queue full, dropping notification %s", notif.ID)
	}
}

func (d *NotificationDispatcher) Stop() {
	log.Println("Stopping notification dispatcher...")
	close(d.stopChan)
	d.wg.Wait()
	log.Println("Notification dispatcher stopped")
}

// MockPushProvider logs instead of calling FCM.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
