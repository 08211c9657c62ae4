// Package apierror renders failures as {"error": CODE, "message": text}
// through echo's default error handler.
package apierror

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
)

type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func New(status int, code, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, Body{Error: code, Message: message})
}

// Internal hides err from the client; it stays available to the request
// logger through HTTPError.Internal.
func Internal(err error) *echo.HTTPError {
	return New(http.StatusInternalServerError, CodeInternal, "internal server error").SetInternal(err)
}
