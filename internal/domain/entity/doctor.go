package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkingHours is the slot policy of a doctor's working day.
type WorkingHours struct {
	StartHour   int `json:"start_hour"`
	EndHour     int `json:"end_hour"`
	SlotMinutes int `json:"slot_minutes"`
}

// Doctor is the scheduling view of a doctor.
// The work_* columns are optional overrides of the system-wide working hours.
type Doctor struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName       string     `gorm:"type:varchar(255);not null" json:"full_name"`
	DepartmentID   *uuid.UUID `gorm:"type:uuid;index" json:"department_id,omitempty"`
	Specialization string     `gorm:"type:varchar(255);not null;default:''" json:"specialization"`
	WorkStartHour  *int       `json:"work_start_hour,omitempty"`
	WorkEndHour    *int       `json:"work_end_hour,omitempty"`
	SlotMinutes    *int       `json:"slot_minutes,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// WorkingHours applies the doctor's overrides on top of the system defaults.
func (d *Doctor) WorkingHours(defaults WorkingHours) WorkingHours {
	hours := defaults
	if d.WorkStartHour != nil {
		hours.StartHour = *d.WorkStartHour
	}
	if d.WorkEndHour != nil {
		hours.EndHour = *d.WorkEndHour
	}
	if d.SlotMinutes != nil {
		hours.SlotMinutes = *d.SlotMinutes
	}
	return hours
}
