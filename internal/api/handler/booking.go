package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/application"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
)

type BookingHandler struct {
	bookingService BookingServiceInterface
}

func NewBookingHandler(bookingService BookingServiceInterface) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

type CreateBookingRequest struct {
	HoldID string `json:"hold_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type BookingResponse struct {
	ID          string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TripID      string   `json:"trip_id"`
	HoldID      string   `json:"hold_id"`
	SeatIDs     []string `json:"seat_ids"`
	OwnerID     string   `json:"owner_id" example:"user-123"`
	Status      string   `json:"status" example:"reserved"`
	TotalAmount int      `json:"total_amount" example:"10000"`
	PaymentID   *string  `json:"payment_id,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		TripID:      b.TripID,
		HoldID:      b.HoldID,
		SeatIDs:     b.SeatIDs,
		OwnerID:     b.OwnerID,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		PaymentID:   b.PaymentID,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 有効な仮押さえを確定予約へ変換します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string false "ユーザーID（省略時は仮押さえの所有者）"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 410 {object} map[string]string "仮押さえが期限切れ"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.bookingService.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		HoldID:  req.HoldID,
		OwnerID: c.Request().Header.Get("X-User-ID"),
	})
	if err != nil {
		switch {
		case errors.Is(err, hold.ErrHoldNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, hold.ErrHoldExpired):
			return echo.NewHTTPError(http.StatusGone, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	b, err := h.bookingService.GetBooking(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetOwnerBookings godoc
// @Summary ユーザーの予約一覧を取得
// @Description ログインユーザーの予約一覧を取得します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) GetOwnerBookings(c echo.Context) error {
	ownerID := c.Request().Header.Get("X-User-ID")
	if ownerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.bookingService.GetOwnerBookings(c.Request().Context(), ownerID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// RequestCancel godoc
// @Summary 予約のキャンセルを申請
// @Description 支払い済み予約のキャンセル申請を受け付けます
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) RequestCancel(c echo.Context) error {
	id := c.Param("id")
	b, err := h.bookingService.RequestCancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
