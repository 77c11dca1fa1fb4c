package dto

import (
	"time"

	"github.com/google/uuid"
)

type SlotResponse struct {
	Time      string    `json:"time"`
	StartsAt  time.Time `json:"starts_at"`
	Available bool      `json:"available"`
}

// AvailabilityResponse lists a doctor's slots for one day. Available and Occupied
// are disjoint and together cover Slots.
type AvailabilityResponse struct {
	DoctorID    uuid.UUID      `json:"doctor_id"`
	Date        string         `json:"date"`
	Timezone    string         `json:"timezone"`
	SlotMinutes int            `json:"slot_minutes"`
	Slots       []SlotResponse `json:"slots"`
	Available   []string       `json:"available"`
	Occupied    []string       `json:"occupied"`
}
