package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planbookai/platform/gateway/internal/middleware"
	"github.com/planbookai/platform/pkg/tokens"
)

var errMissingHost = errors.New("upstream url needs scheme and host")

type Deps struct {
	AuthURL      string
	PackageURL   string
	QuestionURL  string
	DiscoveryURL string

	Validator      *tokens.Validator
	PublicPrefixes []string
	LookupTimeout  time.Duration
	Logger         *slog.Logger

	// Transport overrides the upstream transport; nil uses the default.
	Transport http.RoundTripper
}

type route struct {
	prefix string
	strip  string
}

var (
	authRoutes     = []route{{"/api/auth", "/api"}}
	packageRoutes  = []route{{"/api/packages", "/api"}, {"/api/teacher/packages", "/api"}, {"/api/orders", "/api"}, {"/api/subscriptions", "/api"}}
	questionRoutes = []route{{"/api/questions", "/api"}}
	eurekaRoutes   = []route{{"/eureka", ""}}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func mount(e *echo.Echo, target string, routes []route, transport http.RoundTripper) error {
	if target == "" {
		return nil
	}
	for _, r := range routes {
		h, err := newProxy(target, r.strip, transport)
		if err != nil {
			return err
		}
		e.Any(r.prefix, h)
		e.Any(r.prefix+"/*", h)
	}
	return nil
}

func Register(e *echo.Echo, d *Deps) error {
	if d.Validator == nil || d.Validator.Codec == nil {
		return errors.New("token validator is required")
	}
	if d.AuthURL == "" {
		return errors.New("auth upstream is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	transport := d.Transport
	if transport == nil {
		transport = newTransport()
	}

	e.Pre(middleware.NormalizePath())
	for _, m := range middleware.Common(logger) {
		e.Use(m)
	}
	e.Use(middleware.AuthFilter(middleware.AuthConfig{
		Validator:      d.Validator,
		PublicPrefixes: d.PublicPrefixes,
		LookupTimeout:  d.LookupTimeout,
	}))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range []struct {
		target string
		routes []route
	}{
		{d.AuthURL, authRoutes},
		{d.PackageURL, packageRoutes},
		{d.QuestionURL, questionRoutes},
		{d.DiscoveryURL, eurekaRoutes},
	} {
		if err := mount(e, m.target, m.routes, transport); err != nil {
			return err
		}
	}
	return nil
}
