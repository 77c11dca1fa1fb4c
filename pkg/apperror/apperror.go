package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for HTTP mapping.
type Kind string

const (
	KindValidation           Kind = "VALIDATION"
	KindInvalidTimestamp     Kind = "INVALID_TIMESTAMP"
	KindSlotConflict         Kind = "SLOT_CONFLICT"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindForbidden            Kind = "FORBIDDEN"
	KindNotFound             Kind = "NOT_FOUND"
	KindInvalidConfiguration Kind = "INVALID_CONFIGURATION"
)

// Error is the typed error returned by the scheduling core.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	base bool
}

// Base sentinels. errors.Is(err, ErrX) is true for every error of the same kind.
var (
	ErrValidation           = newBase(KindValidation, "validation failed")
	ErrInvalidTimestamp     = newBase(KindInvalidTimestamp, "invalid timestamp")
	ErrSlotConflict         = newBase(KindSlotConflict, "slot is already booked")
	ErrInvalidTransition    = newBase(KindInvalidTransition, "invalid status transition")
	ErrForbidden            = newBase(KindForbidden, "forbidden")
	ErrNotFound             = newBase(KindNotFound, "not found")
	ErrInvalidConfiguration = newBase(KindInvalidConfiguration, "invalid configuration")
)

// Refinements of the base kinds.
var (
	ErrAlreadyCancelled    = New(KindInvalidTransition, "appointment is already cancelled")
	ErrAppointmentNotFound = New(KindNotFound, "appointment not found")
	ErrDoctorNotFound      = New(KindNotFound, "doctor not found")
	ErrPatientNotFound     = New(KindNotFound, "patient not found")
	ErrSlotBusy            = New(KindSlotConflict, "slot is being booked by another request")
	ErrAppointmentInPast   = New(KindValidation, "cannot book a slot in the past")
	ErrOutsideWorkingHours = New(KindValidation, "timestamp is not a bookable slot within working hours")
)

func newBase(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, base: true}
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates an error of the given kind carrying a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the base sentinel of the same kind, so refinements satisfy their base.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.base && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// HTTPStatus maps an error to the status code the delivery layer should answer with.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case KindValidation, KindInvalidTimestamp:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindSlotConflict, KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
