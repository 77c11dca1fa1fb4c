package repository

import (
	"context"

	"appointment-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
}
