package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog records who booked or moved an appointment through its lifecycle
type AuditLog struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID       *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorRole     Role       `gorm:"type:varchar(20);not null" json:"actor_role"`
	Action        string     `gorm:"type:varchar(100);not null;index" json:"action"`
	AppointmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"appointment_id"`
	Metadata      JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Appointment audit actions
const (
	AuditActionAppointmentCreate  = "appointment.create"
	AuditActionAppointmentConfirm = "appointment.confirm"
	AuditActionAppointmentCancel  = "appointment.cancel"
	AuditActionAppointmentReopen  = "appointment.reopen"
)

// AuditActionForStatus names the action recorded when an appointment moves to status.
func AuditActionForStatus(status AppointmentStatus) string {
	switch status {
	case AppointmentStatusConfirmed:
		return AuditActionAppointmentConfirm
	case AppointmentStatusCancelled:
		return AuditActionAppointmentCancel
	default:
		return AuditActionAppointmentReopen
	}
}
