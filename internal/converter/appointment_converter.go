package converter

import (
	"time"

	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/calendar"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Date and Time are rendered in loc.
func AppointmentToResponse(appointment *entity.Appointment, loc *time.Location) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	scheduledAt := appointment.ScheduledAt.In(loc)
	return &dto.AppointmentResponse{
		ID:          appointment.ID,
		DoctorID:    appointment.DoctorID,
		PatientID:   appointment.PatientID,
		ScheduledAt: scheduledAt,
		Date:        scheduledAt.Format(calendar.DateLayout),
		Time:        calendar.TimeOfDayOf(scheduledAt).String(),
		Reason:      appointment.Reason,
		Status:      string(appointment.Status),
		CancelledAt: appointment.CancelledAt,
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment, loc *time.Location) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i], loc)
	}
	return responses
}
