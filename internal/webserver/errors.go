package webserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrorResponse body of every error reply
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ErrorHandler renders errors that escaped the handlers as {message}.
// Anything that is not an echo.HTTPError is logged and reported as an opaque 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	resp := ErrorResponse{Code: "INTERNAL_ERROR", Message: "internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		resp.Code = ""
		resp.Message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			zap.L().Debug("http error", zap.Int("status", status), zap.Error(he.Internal))
		}
	} else {
		zap.L().Error("unhandled error",
			zap.String("namespace", "http"),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		zap.L().Error("failed to write error response", zap.Error(err))
	}
}
