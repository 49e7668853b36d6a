package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/notifier"
)

type StatusHandler struct {
	bookingService BookingServiceInterface
	watcher        *notifier.Watcher
}

func NewStatusHandler(bookingService BookingServiceInterface, watcher *notifier.Watcher) *StatusHandler {
	return &StatusHandler{bookingService: bookingService, watcher: watcher}
}

// Stream godoc
// @Summary 予約状態をストリーム配信
// @Description Server-Sent Eventsで予約の状態変化を配信します。接続時に現在の状態を1回送り、以降は変化のみ届きます
// @Tags bookings
// @Produce text/event-stream
// @Param id path string true "予約ID"
// @Success 200 {string} string "SSEストリーム"
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/status/stream [get]
func (h *StatusHandler) Stream(c echo.Context) error {
	id := c.Param("id")

	// 存在しない予約の監視は開始しない
	if _, err := h.bookingService.GetBooking(c.Request().Context(), id); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for update := range h.watcher.Watch(ctx, id) {
		data, err := json.Marshal(update)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(res, "event: status\ndata: %s\n\n", data); err != nil {
			// クライアント切断
			return nil
		}
		res.Flush()
	}
	return nil
}
