package usecase

import (
	"context"
	"time"

	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/pkg/calendar"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error)
}

type availabilityUsecase struct {
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	defaults        entity.WorkingHours
	loc             *time.Location
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	defaults entity.WorkingHours,
	loc *time.Location,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		defaults:        defaults,
		loc:             loc,
	}
}

// GetAvailability returns every slot of the doctor's day flagged available or occupied.
// An unknown doctor yields an empty day rather than an error.
func (u *availabilityUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error) {
	day, err := calendar.ParseDate(date, u.loc)
	if err != nil {
		return nil, err
	}

	res := &dto.AvailabilityResponse{
		DoctorID:  doctorID,
		Date:      day.Format(calendar.DateLayout),
		Timezone:  u.loc.String(),
		Slots:     []dto.SlotResponse{},
		Available: []string{},
		Occupied:  []string{},
	}

	doctor, err := u.doctorRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return res, nil
	}

	hours := doctor.WorkingHours(u.defaults)
	slots, err := calendar.DaySlots(hours.StartHour, hours.EndHour, hours.SlotMinutes)
	if err != nil {
		u.log.Warnf("Invalid working hours for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	res.SlotMinutes = hours.SlotMinutes

	dayStart := calendar.StartOfDay(day, u.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	appointments, err := u.appointmentRepo.FindByDoctorAndDate(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s on %s: %+v", doctorID, res.Date, err)
		return nil, err
	}

	occupied := make([]bool, len(slots))
	for i := range appointments {
		if !appointments[i].IsActive() {
			continue
		}
		tod := calendar.TimeOfDayOf(appointments[i].ScheduledAt.In(u.loc))
		if idx, ok := calendar.SlotIndex(tod, hours.StartHour, hours.SlotMinutes, len(slots)); ok {
			occupied[idx] = true
		}
	}

	for i, slot := range slots {
		label := slot.String()
		res.Slots = append(res.Slots, dto.SlotResponse{
			Time:      label,
			StartsAt:  calendar.At(day, slot, u.loc),
			Available: !occupied[i],
		})
		if occupied[i] {
			res.Occupied = append(res.Occupied, label)
		} else {
			res.Available = append(res.Available, label)
		}
	}

	return res, nil
}
