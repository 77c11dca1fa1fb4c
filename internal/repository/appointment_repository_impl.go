package repository

import (
	"context"
	"errors"
	"time"

	"appointment-scheduler/internal/domain/entity"
	domainRepo "appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/internal/infrastructure/database"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) FindConflicting(ctx context.Context, doctorID uuid.UUID, scheduledAt time.Time) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := database.Conn(ctx, r.db).
		Where("doctor_id = ? AND scheduled_at = ? AND status <> ?", doctorID, scheduledAt, entity.AppointmentStatusCancelled).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// Insert relies on uniq_appointments_doctor_slot_active; a concurrent booking of the
// same slot that slipped past FindConflicting surfaces here as ErrSlotConflict.
func (r *appointmentRepository) Insert(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}

	err := database.Conn(ctx, r.db).Create(appointment).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrSlotConflict
		}
		return err
	}
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Appointment, error) {
	var appointment entity.Appointment
	query := database.Conn(ctx, r.db)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	err := query.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// UpdateStatus applies the transition only while the row still has status from.
// Returns affected rows: 1 = applied, 0 = changed concurrently.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.AppointmentStatus, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if to == entity.AppointmentStatusCancelled {
		updates["cancelled_at"] = at
	}

	result := database.Conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := database.Conn(ctx, r.db).
		Where("doctor_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND status <> ?",
			doctorID, dayStart, dayEnd, entity.AppointmentStatusCancelled).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
