package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/application"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
)

// TripServiceInterface は便サービスのインターフェース
type TripServiceInterface interface {
	CreateTrip(ctx context.Context, input application.CreateTripInput) (*trip.Trip, error)
	GetTrip(ctx context.Context, id string) (*trip.Trip, error)
	SearchTrips(ctx context.Context, date time.Time, routeID string) ([]application.TripSummary, error)
	GetTripSeats(ctx context.Context, tripID string) ([]*seat.Seat, error)
	CreateSeats(ctx context.Context, input application.CreateSeatsInput) ([]*seat.Seat, error)
	BlockSeats(ctx context.Context, tripID string, seatIDs []string) error
	CountFreeSeats(ctx context.Context, tripID string) (int, error)
}

// HoldServiceInterface は仮押さえサービスのインターフェース
type HoldServiceInterface interface {
	CreateHold(ctx context.Context, input application.CreateHoldInput) (*hold.Hold, error)
	GetHold(ctx context.Context, id string) (*hold.Hold, error)
	ReleaseHold(ctx context.Context, id string) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetOwnerBookings(ctx context.Context, ownerID string, limit, offset int) ([]*booking.Booking, error)
	RequestCancel(ctx context.Context, id string) (*booking.Booking, error)
}

// WebhookServiceInterface は決済Webhookを処理するインターフェース
type WebhookServiceInterface interface {
	HandleProviderEvent(ctx context.Context, providerName string, payload []byte, signature string) error
}
