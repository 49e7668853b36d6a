package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/application"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
)

// MockTripService は便サービスのモック
type MockTripService struct {
	mock.Mock
}

func (m *MockTripService) CreateTrip(ctx context.Context, input application.CreateTripInput) (*trip.Trip, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trip.Trip), args.Error(1)
}

func (m *MockTripService) GetTrip(ctx context.Context, id string) (*trip.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trip.Trip), args.Error(1)
}

func (m *MockTripService) SearchTrips(ctx context.Context, date time.Time, routeID string) ([]application.TripSummary, error) {
	args := m.Called(ctx, date, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.TripSummary), args.Error(1)
}

func (m *MockTripService) GetTripSeats(ctx context.Context, tripID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockTripService) CreateSeats(ctx context.Context, input application.CreateSeatsInput) ([]*seat.Seat, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

func (m *MockTripService) BlockSeats(ctx context.Context, tripID string, seatIDs []string) error {
	args := m.Called(ctx, tripID, seatIDs)
	return args.Error(0)
}

func (m *MockTripService) CountFreeSeats(ctx context.Context, tripID string) (int, error) {
	args := m.Called(ctx, tripID)
	return args.Int(0), args.Error(1)
}

// MockHoldService は仮押さえサービスのモック
type MockHoldService struct {
	mock.Mock
}

func (m *MockHoldService) CreateHold(ctx context.Context, input application.CreateHoldInput) (*hold.Hold, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.Hold), args.Error(1)
}

func (m *MockHoldService) GetHold(ctx context.Context, id string) (*hold.Hold, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.Hold), args.Error(1)
}

func (m *MockHoldService) ReleaseHold(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBookingService は予約サービスのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetOwnerBookings(ctx context.Context, ownerID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) RequestCancel(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

// MockWebhookService は決済Webhookサービスのモック
type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandleProviderEvent(ctx context.Context, providerName string, payload []byte, signature string) error {
	args := m.Called(ctx, providerName, payload, signature)
	return args.Error(0)
}
