package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/service"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// httpError translates a domain error kind into an HTTP status. Errors
// that are not a known kind become a generic 500 so internal detail
// never reaches the caller.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return echo.NewHTTPError(http.StatusBadRequest, service.ErrInvalidRefreshToken.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, service.ErrConflict.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}

// ErrorHandler renders every error, including the ones raised by
// middleware, in the same envelope as successful responses.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "Internal Server Error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, Response{Success: false, Message: msg})
	}
}
