package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"appointment-scheduler/internal/converter"
	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/provider"
	"appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/internal/service"
	"appointment-scheduler/pkg/apperror"
	"appointment-scheduler/pkg/calendar"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AppointmentSchedulerUsecase interface {
	BookAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListDoctorAppointments(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, date string) (*dto.AppointmentListResponse, error)
}

type appointmentSchedulerUsecase struct {
	log             *logrus.Logger
	transactor      repository.Transactor
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	auditService    service.AuditService
	locker          provider.SlotLocker
	events          provider.EventEmitter
	defaults        entity.WorkingHours
	loc             *time.Location
	now             func() time.Time
}

func NewAppointmentSchedulerUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	locker provider.SlotLocker,
	events provider.EventEmitter,
	defaults entity.WorkingHours,
	loc *time.Location,
) AppointmentSchedulerUsecase {
	return &appointmentSchedulerUsecase{
		log:             log,
		transactor:      transactor,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		auditService:    auditService,
		locker:          locker,
		events:          events,
		defaults:        defaults,
		loc:             loc,
		now:             time.Now,
	}
}

// BookAppointment creates a PENDING appointment for one doctor slot.
//
// Flow:
// 1. Validate input, parties and the slot grid
// 2. Acquire the (doctor, timestamp) lock
// 3. In one transaction: conflict pre-check, insert, audit row
// 4. Release the lock, then emit appointment.created
//
// The partial unique index on (doctor_id, scheduled_at) is the authoritative
// guard; the lock only keeps concurrent requests from racing into it.
func (u *appointmentSchedulerUsecase) BookAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "doctor_id must be a valid UUID", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "patient_id must be a valid UUID", err)
	}

	scheduledAt, err := calendar.ParseTimestamp(strings.TrimSpace(req.ScheduledAt), u.loc)
	if err != nil {
		return nil, err
	}

	if actor.IsPatient() && actor.UserID != patientID {
		return nil, apperror.New(apperror.KindForbidden, "patients can only book appointments for themselves")
	}

	doctor, err := u.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, apperror.ErrDoctorNotFound
	}

	patient, err := u.patientRepo.FindByID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, apperror.ErrPatientNotFound
	}

	if scheduledAt.Before(u.now()) {
		return nil, apperror.ErrAppointmentInPast
	}

	if err := u.checkOnGrid(doctor, scheduledAt); err != nil {
		return nil, err
	}

	release, err := u.locker.Acquire(ctx, provider.SlotLockKey(doctorID, scheduledAt))
	if err != nil {
		if !errors.Is(err, apperror.ErrSlotConflict) {
			u.log.Warnf("Failed to acquire slot lock for doctor %s at %s: %+v", doctorID, scheduledAt, err)
		}
		return nil, err
	}

	appointment := &entity.Appointment{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		PatientID:   patientID,
		ScheduledAt: scheduledAt,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      entity.AppointmentStatusPending,
	}

	err = u.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := u.appointmentRepo.FindConflicting(txCtx, doctorID, scheduledAt)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.ErrSlotConflict
		}

		if err := u.appointmentRepo.Insert(txCtx, appointment); err != nil {
			return err
		}

		return u.auditService.LogCreate(txCtx, actor, appointment)
	})
	release()

	if err != nil {
		if errors.Is(err, apperror.ErrSlotConflict) {
			u.log.Infof("Slot conflict: doctor=%s, scheduled_at=%s", doctorID, scheduledAt.Format(time.RFC3339))
			return nil, err
		}
		u.log.Warnf("Failed to book appointment for doctor %s at %s: %+v", doctorID, scheduledAt, err)
		return nil, err
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, patient=%s, scheduled_at=%s",
		appointment.ID, doctorID, patientID, scheduledAt.Format(time.RFC3339))

	u.events.Emit(ctx, entity.NewAppointmentCreatedEvent(actor, *appointment))

	return converter.AppointmentToResponse(appointment, u.loc), nil
}

// GetAppointment returns one appointment to its patient, its doctor or an admin.
func (u *appointmentSchedulerUsecase) GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id, false)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.ErrAppointmentNotFound
	}

	if !canAccess(actor, appointment) {
		return nil, apperror.New(apperror.KindForbidden, "appointment does not belong to you")
	}

	return converter.AppointmentToResponse(appointment, u.loc), nil
}

// ListDoctorAppointments returns the doctor's non-cancelled appointments of one day.
// Doctors may only list their own day.
func (u *appointmentSchedulerUsecase) ListDoctorAppointments(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, date string) (*dto.AppointmentListResponse, error) {
	if actor.IsPatient() || (actor.IsDoctor() && actor.UserID != doctorID) {
		return nil, apperror.New(apperror.KindForbidden, "not allowed to list this doctor's appointments")
	}

	day, err := calendar.ParseDate(date, u.loc)
	if err != nil {
		return nil, err
	}

	dayStart := calendar.StartOfDay(day, u.loc)
	appointments, err := u.appointmentRepo.FindByDoctorAndDate(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments, u.loc),
		Total:        len(appointments),
	}, nil
}

// checkOnGrid verifies scheduledAt starts one of the doctor's slots on its day.
func (u *appointmentSchedulerUsecase) checkOnGrid(doctor *entity.Doctor, scheduledAt time.Time) error {
	hours := doctor.WorkingHours(u.defaults)
	slots, err := calendar.DaySlots(hours.StartHour, hours.EndHour, hours.SlotMinutes)
	if err != nil {
		u.log.Warnf("Invalid working hours for doctor %s: %+v", doctor.ID, err)
		return err
	}

	tod := calendar.TimeOfDayOf(scheduledAt.In(u.loc))
	idx, ok := calendar.SlotIndex(tod, hours.StartHour, hours.SlotMinutes, len(slots))
	if !ok || slots[idx] != tod {
		return apperror.ErrOutsideWorkingHours
	}
	return nil
}

func validateBookingRequest(req *dto.CreateAppointmentRequest) error {
	if req == nil {
		return apperror.New(apperror.KindValidation, "request body is required")
	}

	var missing []string
	if strings.TrimSpace(req.DoctorID) == "" {
		missing = append(missing, "doctor_id")
	}
	if strings.TrimSpace(req.PatientID) == "" {
		missing = append(missing, "patient_id")
	}
	if strings.TrimSpace(req.ScheduledAt) == "" {
		missing = append(missing, "scheduled_at")
	}
	if strings.TrimSpace(req.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return apperror.Newf(apperror.KindValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// canAccess reports whether actor may see or act on appointment.
func canAccess(actor entity.Actor, appointment *entity.Appointment) bool {
	switch actor.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleDoctor:
		return appointment.DoctorID == actor.UserID
	case entity.RolePatient:
		return appointment.PatientID == actor.UserID
	}
	return false
}
