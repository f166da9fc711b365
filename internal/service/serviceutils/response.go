package serviceutils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ResponseError(c echo.Context, code int, msg string, err error) error {
	resp := GenericResponse{
		Success: false,
		Message: msg,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(code, resp)
}

// StatusFromError maps store failure kinds onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrWriteRejected):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ResponseStoreError writes err with the status StatusFromError picks.
func ResponseStoreError(c echo.Context, msg string, err error) error {
	return ResponseError(c, StatusFromError(err), msg, err)
}
