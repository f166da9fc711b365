package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/convexhub/apigateway/internal/logger"
	"github.com/locvowork/convexhub/apigateway/internal/service"
	"github.com/locvowork/convexhub/apigateway/internal/service/serviceutils"
)

type ButtonPressHandler struct {
	svc service.ButtonPressService
}

func NewButtonPressHandler(svc service.ButtonPressService) *ButtonPressHandler {
	return &ButtonPressHandler{svc: svc}
}

// PressHandler handles POST /api/v1/button-presses
func (h *ButtonPressHandler) PressHandler(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.svc.Press(ctx); err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to record press: %v", err))
		return serviceutils.ResponseStoreError(c, "failed to record press", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SummaryHandler handles GET /api/v1/button-presses/summary
func (h *ButtonPressHandler) SummaryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.svc.Summary(ctx)
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to summarize presses: %v", err))
		return serviceutils.ResponseStoreError(c, "failed to summarize presses", err)
	}

	return c.JSON(http.StatusOK, summary)
}
