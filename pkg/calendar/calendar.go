package calendar

import (
	"fmt"
	"time"

	"appointment-scheduler/pkg/apperror"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// TimeOfDayOf extracts the wall-clock time of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Validate checks a working-hours configuration.
func Validate(workStartHour, workEndHour, slotMinutes int) error {
	if workStartHour < 0 || workStartHour > 23 || workEndHour < 0 || workEndHour > 23 {
		return apperror.Newf(apperror.KindInvalidConfiguration,
			"working hours must be within 0-23, got %d-%d", workStartHour, workEndHour)
	}
	if workEndHour <= workStartHour {
		return apperror.Newf(apperror.KindInvalidConfiguration,
			"work end hour %d must be after work start hour %d", workEndHour, workStartHour)
	}
	if slotMinutes <= 0 {
		return apperror.Newf(apperror.KindInvalidConfiguration,
			"slot minutes must be positive, got %d", slotMinutes)
	}
	return nil
}

// DaySlots returns the start times of every slot between workStartHour:00 and workEndHour:00.
// A slot is only produced when it ends no later than workEndHour:00.
func DaySlots(workStartHour, workEndHour, slotMinutes int) ([]TimeOfDay, error) {
	if err := Validate(workStartHour, workEndHour, slotMinutes); err != nil {
		return nil, err
	}

	end := workEndHour * 60
	slots := make([]TimeOfDay, 0, (end-workStartHour*60)/slotMinutes)
	for m := workStartHour * 60; m+slotMinutes <= end; m += slotMinutes {
		slots = append(slots, TimeOfDay{Hour: m / 60, Minute: m % 60})
	}
	return slots, nil
}

// SlotIndex floors t onto the slot grid. It reports false when t falls outside the grid.
func SlotIndex(t TimeOfDay, workStartHour, slotMinutes, slotCount int) (int, bool) {
	offset := t.Minutes() - workStartHour*60
	if offset < 0 || slotMinutes <= 0 {
		return 0, false
	}
	idx := offset / slotMinutes
	if idx >= slotCount {
		return 0, false
	}
	return idx, true
}

// StartOfDay returns midnight of date's calendar day in loc.
func StartOfDay(date time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// At places a time of day on date's calendar day in loc.
func At(date time.Time, t TimeOfDay, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, apperror.Wrap(apperror.KindInvalidTimestamp, "invalid date format, use YYYY-MM-DD", err)
	}
	return date, nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an appointment timestamp and truncates it to the minute.
// Values without an offset are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.In(loc).Truncate(time.Minute), nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, apperror.Newf(apperror.KindInvalidTimestamp,
		"invalid timestamp %q, use YYYY-MM-DDTHH:MM or RFC3339", value)
}
