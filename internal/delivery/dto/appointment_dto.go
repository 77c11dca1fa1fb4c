package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID    string `json:"doctor_id" validate:"required,uuid"`
	PatientID   string `json:"patient_id" validate:"required,uuid"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Reason      string `json:"reason" validate:"required,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,appt_status"`
}

// Response DTOs

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AppointmentStatusResponse struct {
	Appointment    AppointmentResponse `json:"appointment"`
	PreviousStatus string              `json:"previous_status"`
}
