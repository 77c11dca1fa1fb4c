package messaging

import (
	"context"

	"appointment-scheduler/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// LogPublisher writes appointment events to the application log.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event *entity.AppointmentEvent) error {
	logrus.WithFields(logrus.Fields{
		"event_id":       event.ID,
		"event_type":     event.Type,
		"appointment_id": event.Appointment.ID,
		"doctor_id":      event.Appointment.DoctorID,
		"patient_id":     event.Appointment.PatientID,
		"scheduled_at":   event.Appointment.ScheduledAt,
		"old_status":     event.OldStatus,
		"new_status":     event.NewStatus,
		"actor_id":       event.Actor.UserID,
		"actor_role":     event.Actor.Role,
	}).Info("Appointment event")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
