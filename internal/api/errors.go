package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/apperror"
)

// ErrorHandler renders errors returned by handlers and middleware. Server
// errors are logged; their detail is only returned outside production.
func ErrorHandler(log *zap.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err, production)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}

func render(err error, production bool) (int, Response) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		return he.Code, Response{Success: false, Message: msg}
	}

	e := apperror.As(err)
	body := Response{
		Success: false,
		Message: e.Message,
		Errors:  e.Fields,
		Code:    e.Code,
	}
	if e.Kind == apperror.KindServer && !production && e.Err != nil {
		body.Error = e.Err.Error()
	}
	return e.Kind.HTTPStatus(), body
}
