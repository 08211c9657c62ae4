package middleware

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/planbookai/platform/pkg/apierror"
	loggingmw "github.com/planbookai/platform/pkg/middleware/logging"
)

func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.RequestID(),
		loggingmw.RequestLogger(logger),
		ecM.Recover(),
		ecM.Secure(),
	}
}

// NormalizePath cleans the request path before routing so that dot segments
// and duplicate slashes cannot move a request in or out of a public prefix.
// Register it with echo.Pre.
func NormalizePath() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := c.Request().URL
			p := u.Path
			if p == "" || p[0] != '/' {
				p = "/" + p
			}
			cleaned := path.Clean(p)
			if cleaned != u.Path || u.RawPath != "" {
				if strings.Contains(u.RawPath, "%2f") || strings.Contains(u.RawPath, "%2F") {
					return apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "encoded path separators are not allowed")
				}
				u.Path = cleaned
				u.RawPath = ""
			}
			return next(c)
		}
	}
}
