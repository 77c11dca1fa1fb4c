package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var (
	testLoc      = time.UTC
	testNow      = time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)
	testDefaults = entity.WorkingHours{StartHour: 9, EndHour: 17, SlotMinutes: 30}
)

func fixedNow() time.Time { return testNow }

// fakeAppointmentRepository enforces one active appointment per (doctor, timestamp)
// atomically in Insert, like the partial unique index does.
type fakeAppointmentRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]entity.Appointment
	staleUpdates bool
}

func newFakeAppointmentRepository() *fakeAppointmentRepository {
	return &fakeAppointmentRepository{appointments: make(map[uuid.UUID]entity.Appointment)}
}

func (r *fakeAppointmentRepository) FindConflicting(ctx context.Context, doctorID uuid.UUID, scheduledAt time.Time) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.ScheduledAt.Equal(scheduledAt) && a.IsActive() {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepository) Insert(ctx context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.DoctorID == appointment.DoctorID && a.ScheduledAt.Equal(appointment.ScheduledAt) && a.IsActive() {
			return apperror.ErrSlotConflict
		}
	}
	appointment.CreatedAt = testNow
	appointment.UpdatedAt = testNow
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *fakeAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.AppointmentStatus, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != from || r.staleUpdates {
		return 0, nil
	}
	a.Status = to
	a.UpdatedAt = at
	if to == entity.AppointmentStatusCancelled {
		a.CancelledAt = &at
	}
	r.appointments[id] = a
	return 1, nil
}

func (r *fakeAppointmentRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.IsActive() && !a.ScheduledAt.Before(dayStart) && a.ScheduledAt.Before(dayEnd) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledAt.Before(result[j].ScheduledAt) })
	return result, nil
}

// put stores an appointment as is, bypassing the uniqueness check.
func (r *fakeAppointmentRepository) put(a entity.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a
}

func (r *fakeAppointmentRepository) activeAt(doctorID uuid.UUID, scheduledAt time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.ScheduledAt.Equal(scheduledAt) && a.IsActive() {
			n++
		}
	}
	return n
}

type fakeDoctorRepository struct {
	doctors map[uuid.UUID]*entity.Doctor
}

func (r *fakeDoctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	return r.doctors[id], nil
}

type fakePatientRepository struct {
	patients map[uuid.UUID]*entity.Patient
}

func (r *fakePatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	return r.patients[id], nil
}

type fakeAuditLogRepository struct {
	mu     sync.Mutex
	nextID int64
	logs   []entity.AuditLog
}

func (r *fakeAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	log.ID = r.nextID
	log.CreatedAt = testNow
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditLogRepository) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.AuditLog
	for _, l := range r.logs {
		if l.AppointmentID == appointmentID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fakeAuditLogRepository) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditLogRepository) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, len(r.logs))
	for i, l := range r.logs {
		actions[i] = l.Action
	}
	return actions
}

// fakeTransactor refuses to start on a done context, like a real BEGIN would.
type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*entity.AppointmentEvent
}

func (e *recordingEmitter) Emit(ctx context.Context, event *entity.AppointmentEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) all() []*entity.AppointmentEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*entity.AppointmentEvent(nil), e.events...)
}

// noopLocker grants every lock immediately, leaving the store as the only guard.
type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}
