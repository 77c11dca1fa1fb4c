package service

import (
	"context"
	"sync"
	"time"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/provider"

	"github.com/sirupsen/logrus"
)

// EventDispatcher hands committed appointment events to a publisher on a pool of
// background workers. Emit never blocks the caller: when the queue is full the
// event is dropped and logged. Delivery is at-most-once.
type EventDispatcher struct {
	publisher      provider.EventPublisher
	log            *logrus.Logger
	publishTimeout time.Duration

	queue chan *entity.AppointmentEvent
	wg    sync.WaitGroup

	// mu guards stopped and the close of queue against concurrent Emit calls.
	mu      sync.RWMutex
	stopped bool
}

func NewEventDispatcher(publisher provider.EventPublisher, log *logrus.Logger, bufferSize, workers int, publishTimeout time.Duration) *EventDispatcher {
	d := &EventDispatcher{
		publisher:      publisher,
		log:            log,
		publishTimeout: publishTimeout,
		queue:          make(chan *entity.AppointmentEvent, bufferSize),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Emit enqueues event for delivery. The request ctx is not used for delivery,
// so cancelling the request does not cancel the notification.
func (d *EventDispatcher) Emit(_ context.Context, event *entity.AppointmentEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.log.Warnf("Event dispatcher stopped, dropping event %s (%s)", event.ID, event.Type)
		return
	}

	select {
	case d.queue <- event:
	default:
		d.log.Warnf("Event queue full, dropping event %s (%s)", event.ID, event.Type)
	}
}

// Stop drains queued events, waits for the workers and closes the publisher.
// Safe to call multiple times.
func (d *EventDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()

	if err := d.publisher.Close(); err != nil {
		d.log.Warnf("Failed to close event publisher: %+v", err)
	}
	d.log.Info("EventDispatcher stopped")
}

func (d *EventDispatcher) worker() {
	defer d.wg.Done()

	for event := range d.queue {
		d.publish(event)
	}
}

func (d *EventDispatcher) publish(event *entity.AppointmentEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("Recovered panic while publishing event %s: %v", event.ID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		d.log.Warnf("Failed to publish event %s (%s) for appointment %s: %+v", event.ID, event.Type, event.Appointment.ID, err)
		return
	}

	d.log.Debugf("Published event %s (%s)", event.ID, event.Type)
}

var _ provider.EventEmitter = (*EventDispatcher)(nil)
