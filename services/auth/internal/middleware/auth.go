package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planbookai/platform/pkg/apierror"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/pkg/tokens"
)

const claimsKey = "claims"

type BearerAuth struct {
	Validator *tokens.Validator
}

func NewBearerAuth(v *tokens.Validator) *BearerAuth {
	return &BearerAuth{Validator: v}
}

// RequireAccessToken admits requests carrying a valid, unrevoked access
// token and stores its claims on the echo context.
func (m *BearerAuth) RequireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		value, ok := tokens.FromAuthorization(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return apierror.New(http.StatusUnauthorized, apierror.CodeUnauthorized, "missing access token")
		}

		claims, err := m.Validator.ValidateKind(ctx, value, tokens.KindAccess)
		if err != nil {
			if tokens.IsTokenError(err) {
				return apierror.New(http.StatusUnauthorized, apierror.CodeInvalidToken, "invalid or expired token")
			}
			logging.FromContext(ctx).Error("auth_check_failed", "status", 500, "error", err)
			return apierror.Internal(err)
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

func ClaimsFrom(c echo.Context) (*tokens.Claims, error) {
	claims, ok := c.Get(claimsKey).(*tokens.Claims)
	if !ok || claims == nil {
		return nil, errors.New("no claims on context")
	}
	return claims, nil
}
