package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planbookai/platform/pkg/apierror"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/services/auth/internal/middleware"
	"github.com/planbookai/platform/services/auth/internal/service"
	"github.com/planbookai/platform/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

// mapError turns service sentinels into client responses. Anything else is
// an internal error and its detail stays in the logs.
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return apierror.New(http.StatusBadRequest, apierror.CodeValidation, err.Error())
	case errors.Is(err, service.ErrDuplicateIdentity):
		return apierror.New(http.StatusConflict, apierror.CodeDuplicateIdentity, "username or email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apierror.New(http.StatusUnauthorized, apierror.CodeInvalidCredentials, "invalid username or password")
	case errors.Is(err, service.ErrInvalidToken):
		return apierror.New(http.StatusUnauthorized, apierror.CodeInvalidToken, "invalid or expired token")
	case errors.Is(err, service.ErrUserNotFound):
		return apierror.New(http.StatusNotFound, apierror.CodeUserNotFound, "user not found")
	default:
		return apierror.Internal(err)
	}
}

func badBody(err error) *echo.HTTPError {
	return apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "invalid body").SetInternal(err)
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return badBody(err)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badBody(err)
	}

	res, err := h.Svc.Authenticate(ctx, req.LoginIdentifier(), req.Password)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return badBody(err)
	}

	value := req.Value()
	if value == "" {
		value = c.Request().Header.Get(echo.HeaderAuthorization)
	}

	res, err := h.Svc.Refresh(ctx, value)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		return apierror.New(http.StatusUnauthorized, apierror.CodeUnauthorized, "missing access token")
	}

	profile, err := h.Svc.Me(ctx, claims.Subject)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if err := h.Svc.Logout(ctx, c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return apierror.Internal(err)
	}
	return c.NoContent(http.StatusOK)
}
