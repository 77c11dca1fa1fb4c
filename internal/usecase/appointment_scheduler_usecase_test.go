package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *schedulingFixture) bookingRequest(scheduledAt string) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		DoctorID:    f.doctor.ID.String(),
		PatientID:   f.patient.ID.String(),
		ScheduledAt: scheduledAt,
		Reason:      "persistent cough",
	}
}

func TestBookAppointment_ConflictCancelRebook(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	ctx := context.Background()

	first, err := f.scheduler.BookAppointment(ctx, asPatient(f.patient), f.bookingRequest("2024-05-01T09:00"))
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusPending), first.Status)
	assert.Equal(t, "2024-05-01", first.Date)
	assert.Equal(t, "09:00", first.Time)

	_, err = f.scheduler.BookAppointment(ctx, admin(), f.bookingRequest("2024-05-01T09:00"))
	assert.True(t, errors.Is(err, apperror.ErrSlotConflict))
	assert.Equal(t, 1, f.appointments.activeAt(f.doctor.ID, slotAt(9, 0)))

	_, err = f.status.Transition(ctx, asPatient(f.patient), first.ID, "cancelled")
	require.NoError(t, err)

	second, err := f.scheduler.BookAppointment(ctx, asPatient(f.patient), f.bookingRequest("2024-05-01T09:00"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, f.appointments.activeAt(f.doctor.ID, slotAt(9, 0)))

	events := f.events.all()
	require.Len(t, events, 3)
	assert.Equal(t, entity.EventAppointmentCreated, events[0].Type)
	assert.Equal(t, first.ID, events[0].Appointment.ID)
	assert.Equal(t, entity.EventAppointmentStatusChanged, events[1].Type)
	assert.Equal(t, entity.EventAppointmentCreated, events[2].Type)

	assert.Equal(t, []string{
		entity.AuditActionAppointmentCreate,
		entity.AuditActionAppointmentCancel,
		entity.AuditActionAppointmentCreate,
	}, f.audit.actions())
}

func TestBookAppointment_ConcurrentRequestsForSameSlot(t *testing.T) {
	tests := []struct {
		name string
		opts func(t *testing.T) fixtureOptions
	}{
		{"with slot lock", func(t *testing.T) fixtureOptions { return fixtureOptions{} }},
		{"store constraint only", func(t *testing.T) fixtureOptions { return fixtureOptions{locker: noopLocker{}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchedulingFixture(t, tt.opts(t))
			const attempts = 50

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				conflicts int
				others    []error
			)
			start := make(chan struct{})

			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01T10:30"))

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, apperror.ErrSlotConflict):
						conflicts++
					default:
						others = append(others, err)
					}
				}()
			}
			close(start)
			wg.Wait()

			assert.Empty(t, others)
			assert.Equal(t, 1, successes)
			assert.Equal(t, attempts-1, conflicts)
			assert.Equal(t, 1, f.appointments.activeAt(f.doctor.ID, slotAt(10, 30)))
			assert.Len(t, f.events.all(), 1)
		})
	}
}

func TestBookAppointment_DifferentSlotsDoNotContend(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	ctx := context.Background()

	_, err := f.scheduler.BookAppointment(ctx, admin(), f.bookingRequest("2024-05-01T09:00"))
	require.NoError(t, err)
	_, err = f.scheduler.BookAppointment(ctx, admin(), f.bookingRequest("2024-05-01T09:30"))
	require.NoError(t, err)

	req := f.bookingRequest("2024-05-01T09:00")
	req.DoctorID = f.otherDoctor.ID.String()
	_, err = f.scheduler.BookAppointment(ctx, admin(), req)
	require.NoError(t, err)
}

func TestBookAppointment_Validation(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})

	tests := []struct {
		name    string
		actor   entity.Actor
		mutate  func(req *dto.CreateAppointmentRequest)
		wantErr error
	}{
		{"missing doctor", admin(), func(r *dto.CreateAppointmentRequest) { r.DoctorID = "" }, apperror.ErrValidation},
		{"missing patient", admin(), func(r *dto.CreateAppointmentRequest) { r.PatientID = " " }, apperror.ErrValidation},
		{"missing timestamp", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "" }, apperror.ErrValidation},
		{"missing reason", admin(), func(r *dto.CreateAppointmentRequest) { r.Reason = "" }, apperror.ErrValidation},
		{"malformed doctor id", admin(), func(r *dto.CreateAppointmentRequest) { r.DoctorID = "doc-1" }, apperror.ErrValidation},
		{"malformed timestamp", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "tomorrow at nine" }, apperror.ErrInvalidTimestamp},
		{"impossible date", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "2024-02-30T09:00" }, apperror.ErrInvalidTimestamp},
		{"patient books for someone else", asPatient(f.otherPatient), func(r *dto.CreateAppointmentRequest) {}, apperror.ErrForbidden},
		{"unknown doctor", admin(), func(r *dto.CreateAppointmentRequest) { r.DoctorID = uuid.NewString() }, apperror.ErrDoctorNotFound},
		{"unknown patient", admin(), func(r *dto.CreateAppointmentRequest) { r.PatientID = uuid.NewString() }, apperror.ErrPatientNotFound},
		{"in the past", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "2024-04-29T09:00" }, apperror.ErrAppointmentInPast},
		{"between slots", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "2024-05-01T09:15" }, apperror.ErrOutsideWorkingHours},
		{"before opening", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "2024-05-01T08:30" }, apperror.ErrOutsideWorkingHours},
		{"at closing", admin(), func(r *dto.CreateAppointmentRequest) { r.ScheduledAt = "2024-05-01T17:00" }, apperror.ErrOutsideWorkingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.bookingRequest("2024-05-01T11:00")
			tt.mutate(req)

			res, err := f.scheduler.BookAppointment(context.Background(), tt.actor, req)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	assert.Empty(t, f.events.all())
	assert.Empty(t, f.audit.actions())
}

func TestBookAppointment_RefinementsKeepTheirKind(t *testing.T) {
	assert.True(t, errors.Is(apperror.ErrAppointmentInPast, apperror.ErrValidation))
	assert.True(t, errors.Is(apperror.ErrOutsideWorkingHours, apperror.ErrValidation))
	assert.True(t, errors.Is(apperror.ErrDoctorNotFound, apperror.ErrNotFound))
}

func TestBookAppointment_SlotMustBeUpcomingAndOnGrid(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	scheduler := f.scheduler.(*appointmentSchedulerUsecase)

	// Before the day starts the opening slot is bookable.
	res, err := f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01T09:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", res.Time)

	// Once the clock passes it the same slot of another doctor is refused as past.
	scheduler.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 1, 0, time.UTC) }
	req := f.bookingRequest("2024-05-01T09:00")
	req.DoctorID = f.otherDoctor.ID.String()
	_, err = f.scheduler.BookAppointment(context.Background(), admin(), req)
	assert.ErrorIs(t, err, apperror.ErrAppointmentInPast)
	assert.Equal(t, 400, apperror.HTTPStatus(err))

	_, err = f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01T10:10"))
	assert.ErrorIs(t, err, apperror.ErrOutsideWorkingHours)
	assert.Equal(t, 400, apperror.HTTPStatus(err))
}

func TestBookAppointment_AcceptsRFC3339AndSeconds(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})

	res, err := f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01T13:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "13:00", res.Time)

	res, err = f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01 13:30:45"))
	require.NoError(t, err)
	assert.Equal(t, "13:30", res.Time)
}

func TestBookAppointment_DoctorWorkingHoursOverride(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	start, slot := 7, 20
	f.doctor.WorkStartHour = &start
	f.doctor.SlotMinutes = &slot

	_, err := f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01T07:40"))
	require.NoError(t, err)

	_, err = f.scheduler.BookAppointment(context.Background(), admin(), f.bookingRequest("2024-05-01T09:30"))
	assert.True(t, errors.Is(err, apperror.ErrOutsideWorkingHours))
}

func TestBookAppointment_CancelledContextLeavesNoRecord(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{locker: noopLocker{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.scheduler.BookAppointment(ctx, admin(), f.bookingRequest("2024-05-01T09:00"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.appointments.activeAt(f.doctor.ID, slotAt(9, 0)))
	assert.Empty(t, f.events.all())
}

func TestGetAppointment_Ownership(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	appt := f.seed(entity.AppointmentStatusPending, slotAt(9, 0))
	ctx := context.Background()

	for _, actor := range []entity.Actor{admin(), asPatient(f.patient), asDoctor(f.doctor)} {
		res, err := f.scheduler.GetAppointment(ctx, actor, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, appt.ID, res.ID)
	}

	_, err := f.scheduler.GetAppointment(ctx, asPatient(f.otherPatient), appt.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	_, err = f.scheduler.GetAppointment(ctx, asDoctor(f.otherDoctor), appt.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.scheduler.GetAppointment(ctx, admin(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListDoctorAppointments(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	f.seed(entity.AppointmentStatusPending, slotAt(9, 0))
	f.seed(entity.AppointmentStatusConfirmed, slotAt(10, 0))
	f.seed(entity.AppointmentStatusCancelled, slotAt(11, 0))
	f.seed(entity.AppointmentStatusPending, slotAt(9, 0).AddDate(0, 0, 1))
	ctx := context.Background()

	res, err := f.scheduler.ListDoctorAppointments(ctx, asDoctor(f.doctor), f.doctor.ID, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "09:00", res.Appointments[0].Time)
	assert.Equal(t, "10:00", res.Appointments[1].Time)

	_, err = f.scheduler.ListDoctorAppointments(ctx, asDoctor(f.otherDoctor), f.doctor.ID, "2024-05-01")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	_, err = f.scheduler.ListDoctorAppointments(ctx, asPatient(f.patient), f.doctor.ID, "2024-05-01")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	_, err = f.scheduler.ListDoctorAppointments(ctx, admin(), f.doctor.ID, "01/05/2024")
	assert.True(t, errors.Is(err, apperror.ErrInvalidTimestamp))
}

func TestBookAppointment_EventIsEmittedAfterCommit(t *testing.T) {
	f := newSchedulingFixture(t, fixtureOptions{})
	actor := asPatient(f.patient)

	res, err := f.scheduler.BookAppointment(context.Background(), actor, f.bookingRequest("2024-05-01T16:30"))
	require.NoError(t, err)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, actor, events[0].Actor)
	assert.Equal(t, entity.AppointmentStatusPending, events[0].Appointment.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC), events[0].Appointment.ScheduledAt)

	stored, err := f.appointments.FindByID(context.Background(), res.ID, false)
	require.NoError(t, err)
	require.NotNil(t, stored)
}
