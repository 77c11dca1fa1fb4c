package repository

import (
	"context"
	"time"

	"appointment-scheduler/internal/domain/entity"
	domainRepo "appointment-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cachedDoctorRepository keeps recently read doctors in an expiring LRU.
// Misses are not cached so a newly created doctor is visible immediately.
type cachedDoctorRepository struct {
	next  domainRepo.DoctorRepository
	cache *expirable.LRU[uuid.UUID, entity.Doctor]
}

func NewCachedDoctorRepository(next domainRepo.DoctorRepository, size int, ttl time.Duration) domainRepo.DoctorRepository {
	return &cachedDoctorRepository{
		next:  next,
		cache: expirable.NewLRU[uuid.UUID, entity.Doctor](size, nil, ttl),
	}
}

func (r *cachedDoctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	if doctor, ok := r.cache.Get(id); ok {
		return &doctor, nil
	}

	doctor, err := r.next.FindByID(ctx, id)
	if err != nil || doctor == nil {
		return doctor, err
	}

	r.cache.Add(id, *doctor)
	return doctor, nil
}
