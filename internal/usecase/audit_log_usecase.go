package usecase

import (
	"context"

	"appointment-scheduler/internal/converter"
	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAuditLogNotFound = apperror.New(apperror.KindNotFound, "audit log not found")
)

type AuditLogUsecase interface {
	GetAppointmentAuditLogs(ctx context.Context, appointmentID uuid.UUID) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log             *logrus.Logger
	auditLogRepo    repository.AuditLogRepository
	appointmentRepo repository.AppointmentRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
	appointmentRepo repository.AppointmentRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:             log,
		auditLogRepo:    auditLogRepo,
		appointmentRepo: appointmentRepo,
	}
}

func (u *auditLogUsecase) GetAppointmentAuditLogs(ctx context.Context, appointmentID uuid.UUID) (*dto.AuditLogListResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID, false)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.ErrAppointmentNotFound
	}

	logs, err := u.auditLogRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find audit logs for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
