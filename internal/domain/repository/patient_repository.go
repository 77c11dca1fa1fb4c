package repository

import (
	"context"

	"appointment-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

type PatientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
}
