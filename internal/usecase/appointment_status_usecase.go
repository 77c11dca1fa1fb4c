package usecase

import (
	"context"
	"errors"
	"time"

	"appointment-scheduler/internal/converter"
	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/provider"
	"appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/internal/service"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// errConcurrentTransition aborts the transaction when the conditional update matched no row.
var errConcurrentTransition = apperror.New(apperror.KindInvalidTransition, "appointment status changed concurrently, reload and retry")

type AppointmentStatusUsecase interface {
	Transition(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, newStatus string) (*dto.AppointmentStatusResponse, error)
}

type appointmentStatusUsecase struct {
	log             *logrus.Logger
	transactor      repository.Transactor
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
	events          provider.EventEmitter
	graph           entity.StatusGraph
	loc             *time.Location
	now             func() time.Time
}

func NewAppointmentStatusUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	events provider.EventEmitter,
	graph entity.StatusGraph,
	loc *time.Location,
) AppointmentStatusUsecase {
	return &appointmentStatusUsecase{
		log:             log,
		transactor:      transactor,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		events:          events,
		graph:           graph,
		loc:             loc,
		now:             time.Now,
	}
}

// Transition moves an appointment along the status graph on behalf of actor.
//
// Checks, in order: status value, existence, already cancelled, patient may only
// cancel, ownership, graph edge. The update is conditional on the status read
// under the row lock, so two racing transitions cannot both apply.
func (u *appointmentStatusUsecase) Transition(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, newStatus string) (*dto.AppointmentStatusResponse, error) {
	to, ok := entity.ParseAppointmentStatus(newStatus)
	if !ok {
		return nil, apperror.Newf(apperror.KindValidation, "unknown status %q, use pending, confirmed or cancelled", newStatus)
	}

	var (
		appointment *entity.Appointment
		from        entity.AppointmentStatus
	)

	err := u.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		appointment, err = u.appointmentRepo.FindByID(txCtx, appointmentID, true)
		if err != nil {
			return err
		}
		if appointment == nil {
			return apperror.ErrAppointmentNotFound
		}
		from = appointment.Status

		if appointment.IsCancelled() {
			return apperror.ErrAlreadyCancelled
		}
		if actor.IsPatient() && to != entity.AppointmentStatusCancelled {
			return apperror.New(apperror.KindForbidden, "patients can only cancel appointments")
		}
		if !canAccess(actor, appointment) {
			return apperror.New(apperror.KindForbidden, "appointment does not belong to you")
		}
		if !u.graph.CanTransition(from, to) {
			return apperror.Newf(apperror.KindInvalidTransition, "cannot move appointment from %s to %s", from, to)
		}

		at := u.now().UTC()
		affected, err := u.appointmentRepo.UpdateStatus(txCtx, appointment.ID, from, to, at)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errConcurrentTransition
		}

		appointment.Status = to
		appointment.UpdatedAt = at
		if to == entity.AppointmentStatusCancelled {
			appointment.CancelledAt = &at
		}

		return u.auditService.LogTransition(txCtx, actor, appointment, from)
	})
	if err != nil {
		if _, ok := apperror.KindOf(err); !ok || errors.Is(err, errConcurrentTransition) {
			u.log.Warnf("Failed to transition appointment %s to %s: %+v", appointmentID, to, err)
		}
		return nil, err
	}

	u.log.Infof("Appointment %s moved from %s to %s by %s %s", appointment.ID, from, to, actor.Role, actor.UserID)

	u.events.Emit(ctx, entity.NewStatusChangedEvent(actor, *appointment, from))

	return &dto.AppointmentStatusResponse{
		Appointment:    *converter.AppointmentToResponse(appointment, u.loc),
		PreviousStatus: string(from),
	}, nil
}
