package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus accepts any letter case.
func ParseAppointmentStatus(value string) (AppointmentStatus, bool) {
	status := AppointmentStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return status, true
	}
	return "", false
}

// Appointment is a booking of one doctor slot by one patient.
// At most one non-cancelled appointment may exist per (doctor_id, scheduled_at);
// the partial unique index uniq_appointments_doctor_slot_active enforces it.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	ScheduledAt time.Time         `gorm:"type:timestamptz;not null;index" json:"scheduled_at"`
	Reason      string            `gorm:"type:text;not null" json:"reason"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CancelledAt *time.Time        `gorm:"type:timestamptz" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment is in pending status
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsConfirmed checks if appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsActive reports whether the appointment occupies its slot.
func (a *Appointment) IsActive() bool {
	return !a.IsCancelled()
}

// StatusGraph holds the legal status transitions.
type StatusGraph struct {
	// AllowReopen enables confirmed -> pending, used to correct a mistaken confirmation.
	AllowReopen bool
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func (g StatusGraph) CanTransition(from, to AppointmentStatus) bool {
	switch from {
	case AppointmentStatusPending:
		return to == AppointmentStatusConfirmed || to == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		if to == AppointmentStatusCancelled {
			return true
		}
		return g.AllowReopen && to == AppointmentStatusPending
	}
	return false
}
