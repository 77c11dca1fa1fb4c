package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotLocker serializes bookings of the same (doctor, timestamp) pair.
// Acquire blocks until the lock is held, ctx is done, or the locker gives up; release is
// safe to call once the critical section ends.
type SlotLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SlotLockKey is the lock key of one doctor slot.
func SlotLockKey(doctorID uuid.UUID, scheduledAt time.Time) string {
	return fmt.Sprintf("slot:%s:%d", doctorID, scheduledAt.Unix())
}
