package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefinementsMatchTheirBase(t *testing.T) {
	assert.True(t, errors.Is(ErrAlreadyCancelled, ErrInvalidTransition))
	assert.True(t, errors.Is(ErrAlreadyCancelled, ErrAlreadyCancelled))
	assert.False(t, errors.Is(ErrInvalidTransition, ErrAlreadyCancelled))
	assert.False(t, errors.Is(ErrAlreadyCancelled, ErrForbidden))

	assert.True(t, errors.Is(ErrSlotBusy, ErrSlotConflict))
	assert.True(t, errors.Is(ErrDoctorNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrOutsideWorkingHours, ErrValidation))
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := fmt.Errorf("insert appointment: %w", Wrap(KindSlotConflict, "slot is already booked", cause))

	assert.True(t, errors.Is(err, ErrSlotConflict))
	assert.True(t, errors.Is(err, cause))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindSlotConflict, kind)
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Newf(KindValidation, "%s is required", "reason"), http.StatusBadRequest},
		{"timestamp", ErrInvalidTimestamp, http.StatusBadRequest},
		{"conflict", ErrSlotConflict, http.StatusConflict},
		{"already cancelled", ErrAlreadyCancelled, http.StatusConflict},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrAppointmentNotFound, http.StatusNotFound},
		{"configuration", ErrInvalidConfiguration, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
