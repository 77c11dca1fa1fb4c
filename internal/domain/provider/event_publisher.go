package provider

import (
	"context"

	"appointment-scheduler/internal/domain/entity"
)

// EventPublisher hands appointment events to the notification side.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.AppointmentEvent) error
	Close() error
}

// EventEmitter is the fire-and-forget view the scheduling core depends on.
// Emit never blocks on delivery and never reports delivery failures.
type EventEmitter interface {
	Emit(ctx context.Context, event *entity.AppointmentEvent)
}
