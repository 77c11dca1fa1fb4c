package entity

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags an AppointmentEvent.
type EventType string

const (
	EventAppointmentCreated       EventType = "appointment.created"
	EventAppointmentStatusChanged EventType = "appointment.status_changed"
)

// AppointmentEvent is emitted after a booking or a status change is committed.
// OldStatus and NewStatus are only set on status_changed events.
type AppointmentEvent struct {
	ID          uuid.UUID         `json:"id"`
	Type        EventType         `json:"type"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Actor       Actor             `json:"actor"`
	Appointment Appointment       `json:"appointment"`
	OldStatus   AppointmentStatus `json:"old_status,omitempty"`
	NewStatus   AppointmentStatus `json:"new_status,omitempty"`
}

// NewAppointmentCreatedEvent builds the event carrying a fresh booking.
func NewAppointmentCreatedEvent(actor Actor, appointment Appointment) *AppointmentEvent {
	return &AppointmentEvent{
		ID:          uuid.New(),
		Type:        EventAppointmentCreated,
		OccurredAt:  time.Now().UTC(),
		Actor:       actor,
		Appointment: appointment,
	}
}

// NewStatusChangedEvent builds the event carrying a committed transition.
func NewStatusChangedEvent(actor Actor, appointment Appointment, oldStatus AppointmentStatus) *AppointmentEvent {
	return &AppointmentEvent{
		ID:          uuid.New(),
		Type:        EventAppointmentStatusChanged,
		OccurredAt:  time.Now().UTC(),
		Actor:       actor,
		Appointment: appointment,
		OldStatus:   oldStatus,
		NewStatus:   appointment.Status,
	}
}
