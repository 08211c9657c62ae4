// Package identity is the downstream half of the gateway trust boundary.
// Services behind the gateway mount Trusted and read the caller's identity
// from the headers the gateway injected, without re-verifying any token.
// Such services must not be reachable except through the gateway.
package identity

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

const (
	HeaderAuthUser = "X-Auth-User"
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Headers lists every header the gateway owns. Client supplied copies are
// stripped at the edge.
var Headers = []string{HeaderAuthUser, HeaderUserID, HeaderUserRole}

const ctxKey = "identity"

type Identity struct {
	Username string
	UserID   string
	Role     string
}

func FromHeaders(h http.Header) (Identity, bool) {
	id := Identity{
		Username: h.Get(HeaderAuthUser),
		UserID:   h.Get(HeaderUserID),
		Role:     h.Get(HeaderUserRole),
	}
	return id, id.Username != "" && id.UserID != ""
}

func (id Identity) Apply(h http.Header) {
	h.Set(HeaderAuthUser, id.Username)
	h.Set(HeaderUserID, id.UserID)
	if id.Role != "" {
		h.Set(HeaderUserRole, id.Role)
	}
}

func Strip(h http.Header) {
	for _, k := range Headers {
		h.Del(k)
	}
}

func Set(c echo.Context, id Identity) {
	c.Set(ctxKey, id)
}

func FromContext(c echo.Context) (Identity, bool) {
	id, ok := c.Get(ctxKey).(Identity)
	return id, ok
}

func Trusted() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := FromHeaders(c.Request().Header)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			Set(c, id)
			return next(c)
		}
	}
}

func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := FromContext(c)
			if !ok || id.Role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(roles, id.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}
