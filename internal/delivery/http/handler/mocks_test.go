package handler

import (
	"context"

	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSchedulerUsecase struct {
	mock.Mock
}

func (m *mockSchedulerUsecase) BookAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, actor, req)
	if v := args.Get(0); v != nil {
		return v.(*dto.AppointmentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSchedulerUsecase) GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, actor, id)
	if v := args.Get(0); v != nil {
		return v.(*dto.AppointmentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSchedulerUsecase) ListDoctorAppointments(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, date string) (*dto.AppointmentListResponse, error) {
	args := m.Called(ctx, actor, doctorID, date)
	if v := args.Get(0); v != nil {
		return v.(*dto.AppointmentListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStatusUsecase struct {
	mock.Mock
}

func (m *mockStatusUsecase) Transition(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, newStatus string) (*dto.AppointmentStatusResponse, error) {
	args := m.Called(ctx, actor, appointmentID, newStatus)
	if v := args.Get(0); v != nil {
		return v.(*dto.AppointmentStatusResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAvailabilityUsecase struct {
	mock.Mock
}

func (m *mockAvailabilityUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error) {
	args := m.Called(ctx, doctorID, date)
	if v := args.Get(0); v != nil {
		return v.(*dto.AvailabilityResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuditLogUsecase struct {
	mock.Mock
}

func (m *mockAuditLogUsecase) GetAppointmentAuditLogs(ctx context.Context, appointmentID uuid.UUID) (*dto.AuditLogListResponse, error) {
	args := m.Called(ctx, appointmentID)
	if v := args.Get(0); v != nil {
		return v.(*dto.AuditLogListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*dto.AuditLogResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
