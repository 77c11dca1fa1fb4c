package repository

import (
	"context"
	"time"

	"appointment-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentRepository is the persisted appointment store.
// Lookups return (nil, nil) when nothing matches.
type AppointmentRepository interface {
	// FindConflicting returns the non-cancelled appointment holding (doctorID, scheduledAt), if any.
	FindConflicting(ctx context.Context, doctorID uuid.UUID, scheduledAt time.Time) (*entity.Appointment, error)
	// Insert is a conflict-checked insert: it fails with apperror.ErrSlotConflict when another
	// non-cancelled appointment already holds the slot.
	Insert(ctx context.Context, appointment *entity.Appointment) error
	// FindByID loads an appointment; forUpdate locks the row until the surrounding transaction ends.
	FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Appointment, error)
	// UpdateStatus moves id from -> to only if its status is still from.
	// Returns affected rows: 1 = applied, 0 = status changed concurrently.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.AppointmentStatus, at time.Time) (int64, error)
	// FindByDoctorAndDate returns non-cancelled appointments of a doctor in [dayStart, dayEnd).
	FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error)
}
