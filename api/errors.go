package api

import (
	"net/http"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a registry error kind to an HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUnauthorized:
		return http.StatusForbidden
	case model.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case model.KindNotInitialized:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func registryError(e echo.Context, err error) error {
	kind := model.KindOf(err)
	code := statusFor(kind)
	name := string(kind)
	msg := err.Error()
	if kind == model.KindUnknown {
		name = "INTERNAL"
		logger.Errorf("%s %s failed: %v", e.Request().Method, e.Request().URL.Path, err)
		msg = "internal server error"
	}
	return e.JSON(code, errorResponse{Error: name, Message: msg})
}
