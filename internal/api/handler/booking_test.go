package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
)

func TestBookingHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約を作成できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		now := time.Now()
		expected := &booking.Booking{
			ID:          "booking-123",
			TripID:      "trip-123",
			HoldID:      "hold-123",
			SeatIDs:     []string{"seat-1", "seat-2"},
			OwnerID:     "user-123",
			Status:      booking.StatusReserved,
			TotalAmount: 9600,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("application.CreateBookingInput")).
			Return(expected, nil)

		handler := NewBookingHandler(mockService)

		reqBody := `{"hold_id": "hold-123"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "user-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "booking-123", resp.ID)
		assert.Equal(t, "reserved", resp.Status)
		assert.Equal(t, 9600, resp.TotalAmount)

		mockService.AssertExpectations(t)
	})

	t.Run("期限切れの仮押さえの場合410", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, hold.ErrHoldExpired)

		handler := NewBookingHandler(mockService)

		reqBody := `{"hold_id": "hold-123"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusGone, he.Code)
	})

	t.Run("仮押さえが見つからない場合404", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, hold.ErrHoldNotFound)

		handler := NewBookingHandler(mockService)

		reqBody := `{"hold_id": "missing"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("仮押さえID未指定の場合バリデーションエラー", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.Error(t, err)
		mockService.AssertNotCalled(t, "CreateBooking")
	})
}

func TestBookingHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約を取得できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		paymentID := "tx-001"
		expected := &booking.Booking{
			ID:          "booking-123",
			TripID:      "trip-123",
			HoldID:      "hold-123",
			SeatIDs:     []string{"seat-1"},
			OwnerID:     "user-123",
			Status:      booking.StatusPaid,
			TotalAmount: 4800,
			PaymentID:   &paymentID,
		}
		mockService.On("GetBooking", mock.Anything, "booking-123").Return(expected, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "paid", resp.Status)
		require.NotNil(t, resp.PaymentID)
		assert.Equal(t, "tx-001", *resp.PaymentID)
	})

	t.Run("予約が見つからない場合404", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetBooking", mock.Anything, "nonexistent").Return(nil, booking.ErrBookingNotFound)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/nonexistent", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nonexistent")

		err := handler.GetByID(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestBookingHandler_GetOwnerBookings(t *testing.T) {
	e := NewTestEcho()

	t.Run("ユーザーの予約一覧を取得できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		bookings := []*booking.Booking{
			{ID: "booking-1", OwnerID: "user-123", Status: booking.StatusReserved},
			{ID: "booking-2", OwnerID: "user-123", Status: booking.StatusPaid},
		}
		mockService.On("GetOwnerBookings", mock.Anything, "user-123", 10, 0).Return(bookings, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings?limit=10", nil)
		req.Header.Set("X-User-ID", "user-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.GetOwnerBookings(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})

	t.Run("ユーザーIDがない場合401", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.GetOwnerBookings(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestBookingHandler_RequestCancel(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にキャンセル申請できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		expected := &booking.Booking{
			ID:      "booking-123",
			OwnerID: "user-123",
			Status:  booking.StatusCancelRequested,
		}
		mockService.On("RequestCancel", mock.Anything, "booking-123").Return(expected, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.RequestCancel(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "cancel_requested", resp.Status)
	})

	t.Run("キャンセルできない予約の場合400", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("RequestCancel", mock.Anything, "booking-123").Return(nil, booking.ErrBookingNotCancellable)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.RequestCancel(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}
