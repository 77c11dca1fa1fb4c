package usecase

import (
	"testing"
	"time"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/provider"
	"appointment-scheduler/internal/service"

	"github.com/google/uuid"
)

type schedulingFixture struct {
	doctor       *entity.Doctor
	otherDoctor  *entity.Doctor
	patient      *entity.Patient
	otherPatient *entity.Patient

	appointments *fakeAppointmentRepository
	audit        *fakeAuditLogRepository
	events       *recordingEmitter

	scheduler    AppointmentSchedulerUsecase
	status       AppointmentStatusUsecase
	availability AvailabilityUsecase
	auditLogs    AuditLogUsecase
}

type fixtureOptions struct {
	locker      provider.SlotLocker
	allowReopen bool
}

func newSchedulingFixture(t *testing.T, opts fixtureOptions) *schedulingFixture {
	t.Helper()

	log := newTestLogger()
	f := &schedulingFixture{
		doctor:       &entity.Doctor{ID: uuid.New(), FullName: "Dr. Sari", Specialization: "General"},
		otherDoctor:  &entity.Doctor{ID: uuid.New(), FullName: "Dr. Budi", Specialization: "Cardiology"},
		patient:      &entity.Patient{ID: uuid.New(), FullName: "Andi", Email: "andi@example.com"},
		otherPatient: &entity.Patient{ID: uuid.New(), FullName: "Citra", Email: "citra@example.com"},
		appointments: newFakeAppointmentRepository(),
		audit:        &fakeAuditLogRepository{},
		events:       &recordingEmitter{},
	}

	doctors := &fakeDoctorRepository{doctors: map[uuid.UUID]*entity.Doctor{
		f.doctor.ID:      f.doctor,
		f.otherDoctor.ID: f.otherDoctor,
	}}
	patients := &fakePatientRepository{patients: map[uuid.UUID]*entity.Patient{
		f.patient.ID:      f.patient,
		f.otherPatient.ID: f.otherPatient,
	}}

	locker := opts.locker
	if locker == nil {
		local := service.NewLocalSlotLocker(log, 5*time.Second)
		t.Cleanup(local.Stop)
		locker = local
	}

	auditService := service.NewAuditService(log, f.audit)

	scheduler := NewAppointmentSchedulerUsecase(log, fakeTransactor{}, f.appointments, doctors, patients,
		auditService, locker, f.events, testDefaults, testLoc).(*appointmentSchedulerUsecase)
	scheduler.now = fixedNow
	f.scheduler = scheduler

	status := NewAppointmentStatusUsecase(log, fakeTransactor{}, f.appointments, auditService, f.events,
		entity.StatusGraph{AllowReopen: opts.allowReopen}, testLoc).(*appointmentStatusUsecase)
	status.now = fixedNow
	f.status = status

	f.availability = NewAvailabilityUsecase(log, doctors, f.appointments, testDefaults, testLoc)
	f.auditLogs = NewAuditLogUsecase(log, f.audit, f.appointments)

	return f
}

func admin() entity.Actor {
	return entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
}

func asPatient(p *entity.Patient) entity.Actor {
	return entity.Actor{UserID: p.ID, Role: entity.RolePatient}
}

func asDoctor(d *entity.Doctor) entity.Actor {
	return entity.Actor{UserID: d.ID, Role: entity.RoleDoctor}
}

// seed stores an appointment directly in the given status.
func (f *schedulingFixture) seed(status entity.AppointmentStatus, scheduledAt time.Time) entity.Appointment {
	a := entity.Appointment{
		ID:          uuid.New(),
		DoctorID:    f.doctor.ID,
		PatientID:   f.patient.ID,
		ScheduledAt: scheduledAt,
		Reason:      "follow-up",
		Status:      status,
	}
	f.appointments.put(a)
	return a
}

func slotAt(hour, minute int) time.Time {
	return time.Date(2024, 5, 1, hour, minute, 0, 0, testLoc)
}
