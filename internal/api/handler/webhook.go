package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/provider"
)

type WebhookHandler struct {
	paymentService WebhookServiceInterface
	registry       *provider.Registry
}

func NewWebhookHandler(paymentService WebhookServiceInterface, registry *provider.Registry) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService, registry: registry}
}

type WebhookResponse struct {
	Status string `json:"status" example:"accepted"`
}

// Receive godoc
// @Summary 決済プロバイダーのWebhookを受信
// @Description 署名を検証し、決済結果を冪等に予約へ突合します。重複配送も200を返します
// @Tags webhooks
// @Accept json
// @Produce json
// @Param provider path string true "プロバイダー名" Enums(fastpay, bankgate)
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} map[string]string "ペイロードを解釈できない"
// @Failure 401 {object} map[string]string "署名が一致しない"
// @Failure 404 {object} map[string]string "未知のプロバイダー"
// @Router /webhooks/payments/{provider} [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	providerName := c.Param("provider")
	p, ok := h.registry.Get(providerName)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, provider.ErrUnknownProvider.Error())
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストボディを読み取れません")
	}
	signature := c.Request().Header.Get(p.SignatureHeader())

	if err := h.paymentService.HandleProviderEvent(c.Request().Context(), providerName, payload, signature); err != nil {
		switch {
		case errors.Is(err, provider.ErrUnknownProvider):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, provider.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, provider.ErrBadPayload):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			// 5xxを返せばプロバイダーが再送してくれる
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, WebhookResponse{Status: "accepted"})
}
