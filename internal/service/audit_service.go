package service

import (
	"context"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// AuditService records appointment history. Calls made with a transactional ctx
// are written in that transaction, so the trail commits or rolls back with the change.
type AuditService interface {
	LogCreate(ctx context.Context, actor entity.Actor, appointment *entity.Appointment) error
	LogTransition(ctx context.Context, actor entity.Actor, appointment *entity.Appointment, oldStatus entity.AppointmentStatus) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a booking
func (s *auditService) LogCreate(ctx context.Context, actor entity.Actor, appointment *entity.Appointment) error {
	metadata := entity.JSON{
		"doctor_id":    appointment.DoctorID.String(),
		"patient_id":   appointment.PatientID.String(),
		"scheduled_at": appointment.ScheduledAt,
		"new_status":   appointment.Status,
	}

	return s.write(ctx, actor, entity.AuditActionAppointmentCreate, appointment, metadata)
}

// LogTransition logs a status change with old and new status
func (s *auditService) LogTransition(ctx context.Context, actor entity.Actor, appointment *entity.Appointment, oldStatus entity.AppointmentStatus) error {
	metadata := entity.JSON{
		"old_status": oldStatus,
		"new_status": appointment.Status,
	}

	return s.write(ctx, actor, entity.AuditActionForStatus(appointment.Status), appointment, metadata)
}

func (s *auditService) write(ctx context.Context, actor entity.Actor, action string, appointment *entity.Appointment, metadata entity.JSON) error {
	actorID := actor.UserID
	auditLog := &entity.AuditLog{
		ActorID:       &actorID,
		ActorRole:     actor.Role,
		Action:        action,
		AppointmentID: appointment.ID,
		Metadata:      metadata,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
