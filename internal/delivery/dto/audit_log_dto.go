package dto

import (
	"time"

	"appointment-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs

type AuditLogResponse struct {
	ID            int64       `json:"id"`
	ActorID       *uuid.UUID  `json:"actor_id,omitempty"`
	ActorRole     string      `json:"actor_role"`
	Action        string      `json:"action"`
	AppointmentID uuid.UUID   `json:"appointment_id"`
	Metadata      entity.JSON `json:"metadata"`
	CreatedAt     time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
