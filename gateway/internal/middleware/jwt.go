package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planbookai/platform/pkg/apierror"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/pkg/middleware/identity"
	"github.com/planbookai/platform/pkg/tokens"
)

const (
	CodeMissingAuthorization = "MISSING_AUTHORIZATION_HEADER"
	CodeMalformedToken       = "MALFORMED_TOKEN"
	CodeSignatureMismatch    = "SIGNATURE_MISMATCH"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeTokenRevoked         = "TOKEN_REVOKED"
	CodeWrongTokenKind       = "WRONG_TOKEN_KIND"
)

const DefaultLookupTimeout = 500 * time.Millisecond

type AuthConfig struct {
	Validator *tokens.Validator
	// PublicPrefixes bypass validation. A prefix matches itself and anything
	// below it, never a sibling sharing the same leading characters.
	PublicPrefixes []string
	LookupTimeout  time.Duration
}

func isPublic(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		pre = strings.TrimSuffix(pre, "/")
		if pre == "" {
			continue
		}
		if p == pre || strings.HasPrefix(p, pre+"/") {
			return true
		}
	}
	return false
}

func rejectToken(err error) *echo.HTTPError {
	var code, msg string
	switch {
	case errors.Is(err, tokens.ErrExpired):
		code, msg = CodeTokenExpired, "token expired"
	case errors.Is(err, tokens.ErrRevoked):
		code, msg = CodeTokenRevoked, "token revoked"
	case errors.Is(err, tokens.ErrSignatureMismatch):
		code, msg = CodeSignatureMismatch, "token signature mismatch"
	case errors.Is(err, tokens.ErrWrongKind):
		code, msg = CodeWrongTokenKind, "access token required"
	default:
		code, msg = CodeMalformedToken, "malformed token"
	}
	return apierror.New(http.StatusUnauthorized, code, msg)
}

// AuthFilter admits requests carrying a valid access token and forwards the
// caller's identity as trusted headers. Identity headers sent by the client
// are always removed, on public paths too.
func AuthFilter(cfg AuthConfig) echo.MiddlewareFunc {
	timeout := cfg.LookupTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			identity.Strip(req.Header)

			if isPublic(req.URL.Path, cfg.PublicPrefixes) {
				return next(c)
			}

			l := logging.FromContext(req.Context())

			value, ok := tokens.FromAuthorization(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apierror.New(http.StatusUnauthorized, CodeMissingAuthorization, "missing bearer token")
			}

			ctx, cancel := context.WithTimeout(req.Context(), timeout)
			claims, err := cfg.Validator.ValidateKind(ctx, value, tokens.KindAccess)
			cancel()
			if err != nil {
				if tokens.IsTokenError(err) {
					l.Warn("token_rejected", "status", 401, "reason", err.Error())
					return rejectToken(err)
				}
				l.Error("token_check_failed", "status", 500, "error", err)
				return apierror.Internal(err)
			}

			id := identity.Identity{Username: claims.Subject, UserID: claims.UserID, Role: claims.Role}
			id.Apply(req.Header)
			identity.Set(c, id)
			return next(c)
		}
	}
}
