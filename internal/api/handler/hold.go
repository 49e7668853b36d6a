package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/application"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
)

type HoldHandler struct {
	holdService HoldServiceInterface
}

func NewHoldHandler(holdService HoldServiceInterface) *HoldHandler {
	return &HoldHandler{holdService: holdService}
}

type CreateHoldRequest struct {
	TripID     string   `json:"trip_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs    []string `json:"seat_ids" validate:"required,min=1" example:"seat-A1,seat-A2"`
	TTLSeconds int      `json:"ttl_seconds" validate:"gte=0" example:"600"`
}

type HoldResponse struct {
	ID        string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TripID    string   `json:"trip_id"`
	SeatIDs   []string `json:"seat_ids"`
	OwnerID   string   `json:"owner_id" example:"user-123"`
	Status    string   `json:"status" example:"active"`
	ExpiresAt string   `json:"expires_at"`
	CreatedAt string   `json:"created_at"`
}

func toHoldResponse(h *hold.Hold) HoldResponse {
	return HoldResponse{
		ID:        h.ID,
		TripID:    h.TripID,
		SeatIDs:   h.SeatIDs,
		OwnerID:   h.OwnerID,
		Status:    string(h.Status),
		ExpiresAt: h.ExpiresAt.Format(time.RFC3339),
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary 座席を仮押さえ
// @Description 座席集合を全席成功か全席失敗かで仮押さえします
// @Tags holds
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateHoldRequest true "仮押さえ情報"
// @Success 201 {object} HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "座席が確保できない"
// @Router /holds [post]
func (h *HoldHandler) Create(c echo.Context) error {
	ownerID := c.Request().Header.Get("X-User-ID")
	if ownerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.holdService.CreateHold(c.Request().Context(), application.CreateHoldInput{
		TripID:  req.TripID,
		SeatIDs: req.SeatIDs,
		OwnerID: ownerID,
		TTL:     time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		switch {
		case errors.Is(err, trip.ErrTripNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, seat.ErrSeatConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, toHoldResponse(created))
}

// GetByID godoc
// @Summary 仮押さえを取得
// @Description 指定IDの仮押さえを取得します
// @Tags holds
// @Produce json
// @Param id path string true "仮押さえID"
// @Success 200 {object} HoldResponse
// @Failure 404 {object} map[string]string
// @Router /holds/{id} [get]
func (h *HoldHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	found, err := h.holdService.GetHold(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toHoldResponse(found))
}

// Release godoc
// @Summary 仮押さえを解放
// @Description 仮押さえを明示的に解放し、座席を空席に戻します（冪等）
// @Tags holds
// @Param id path string true "仮押さえID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /holds/{id} [delete]
func (h *HoldHandler) Release(c echo.Context) error {
	id := c.Param("id")
	if err := h.holdService.ReleaseHold(c.Request().Context(), id); err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
