package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/application"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
)

type TripHandler struct {
	tripService TripServiceInterface
}

func NewTripHandler(tripService TripServiceInterface) *TripHandler {
	return &TripHandler{tripService: tripService}
}

type CreateTripRequest struct {
	RouteID   string `json:"route_id" validate:"required" example:"tokyo-osaka"`
	VehicleID string `json:"vehicle_id" validate:"required" example:"bus-101"`
	DepartAt  string `json:"depart_at" validate:"required" example:"2026-09-01T08:00:00+09:00"`
	ArriveBy  string `json:"arrive_by" validate:"required" example:"2026-09-01T16:30:00+09:00"`
}

type TripResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RouteID   string `json:"route_id" example:"tokyo-osaka"`
	VehicleID string `json:"vehicle_id" example:"bus-101"`
	DepartAt  string `json:"depart_at" example:"2026-09-01T08:00:00+09:00"`
	ArriveBy  string `json:"arrive_by" example:"2026-09-01T16:30:00+09:00"`
	Status    string `json:"status" example:"scheduled"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type TripSummaryResponse struct {
	TripResponse
	FreeSeats int `json:"free_seats" example:"38"`
}

type SeatResponse struct {
	ID         string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TripID     string `json:"trip_id"`
	SeatNumber string `json:"seat_number" example:"A-1"`
	Class      string `json:"class" example:"standard"`
	Status     string `json:"status" example:"free"`
	Price      int    `json:"price" example:"5000"`
}

type CreateSeatsRequest struct {
	Prefix string `json:"prefix" validate:"required" example:"A"`
	Count  int    `json:"count" validate:"required,gt=0" example:"40"`
	Class  string `json:"class" validate:"required" example:"standard"`
	Price  int    `json:"price" validate:"gte=0" example:"5000"`
}

type BlockSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1"`
}

func toTripResponse(t *trip.Trip) TripResponse {
	return TripResponse{
		ID:        t.ID,
		RouteID:   t.RouteID,
		VehicleID: t.VehicleID,
		DepartAt:  t.DepartAt.Format(time.RFC3339),
		ArriveBy:  t.ArriveBy.Format(time.RFC3339),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID:         s.ID,
		TripID:     s.TripID,
		SeatNumber: s.SeatNumber,
		Class:      s.Class,
		Status:     string(s.Status),
		Price:      s.Price,
	}
}

// Create godoc
// @Summary 便を作成
// @Description 新しい便を作成します
// @Tags trips
// @Accept json
// @Produce json
// @Param request body CreateTripRequest true "便情報"
// @Success 201 {object} TripResponse
// @Failure 400 {object} map[string]string
// @Router /trips [post]
func (h *TripHandler) Create(c echo.Context) error {
	var req CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	departAt, err := time.Parse(time.RFC3339, req.DepartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "出発時刻の形式が不正です")
	}
	arriveBy, err := time.Parse(time.RFC3339, req.ArriveBy)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "到着時刻の形式が不正です")
	}

	t, err := h.tripService.CreateTrip(c.Request().Context(), application.CreateTripInput{
		RouteID:   req.RouteID,
		VehicleID: req.VehicleID,
		DepartAt:  departAt,
		ArriveBy:  arriveBy,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toTripResponse(t))
}

// GetByID godoc
// @Summary 便を取得
// @Description 指定IDの便を取得します
// @Tags trips
// @Produce json
// @Param id path string true "便ID"
// @Success 200 {object} TripResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id} [get]
func (h *TripHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	t, err := h.tripService.GetTrip(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTripResponse(t))
}

// Search godoc
// @Summary 便を検索
// @Description 日付と路線で便を検索し、空席数の概要を返します
// @Tags trips
// @Produce json
// @Param date query string true "日付（YYYY-MM-DD）"
// @Param route_id query string false "路線ID"
// @Success 200 {array} TripSummaryResponse
// @Failure 400 {object} map[string]string
// @Router /trips [get]
func (h *TripHandler) Search(c echo.Context) error {
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "dateパラメータが必要です")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "日付の形式が不正です")
	}
	routeID := c.QueryParam("route_id")

	summaries, err := h.tripService.SearchTrips(c.Request().Context(), date, routeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]TripSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = TripSummaryResponse{
			TripResponse: toTripResponse(s.Trip),
			FreeSeats:    s.FreeSeats,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSeats godoc
// @Summary 便の座席一覧を取得
// @Description 指定便の全座席と状態を返します
// @Tags trips
// @Produce json
// @Param id path string true "便ID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/seats [get]
func (h *TripHandler) GetSeats(c echo.Context) error {
	id := c.Param("id")
	seats, err := h.tripService.GetTripSeats(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateSeats godoc
// @Summary 便の座席を一括作成
// @Description 指定便に座席レイアウトを一括登録します
// @Tags trips
// @Accept json
// @Produce json
// @Param id path string true "便ID"
// @Param request body CreateSeatsRequest true "座席レイアウト"
// @Success 201 {array} SeatResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/seats [post]
func (h *TripHandler) CreateSeats(c echo.Context) error {
	id := c.Param("id")
	var req CreateSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	seats, err := h.tripService.CreateSeats(c.Request().Context(), application.CreateSeatsInput{
		TripID: id,
		Prefix: req.Prefix,
		Count:  req.Count,
		Class:  req.Class,
		Price:  req.Price,
	})
	if err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusCreated, resp)
}

// BlockSeats godoc
// @Summary 座席を保守ブロック
// @Description 指定座席を予約対象から外します
// @Tags trips
// @Accept json
// @Param id path string true "便ID"
// @Param request body BlockSeatsRequest true "座席ID一覧"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/seats/block [post]
func (h *TripHandler) BlockSeats(c echo.Context) error {
	id := c.Param("id")
	var req BlockSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.tripService.BlockSeats(c.Request().Context(), id, req.SeatIDs); err != nil {
		if errors.Is(err, trip.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
