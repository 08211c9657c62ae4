package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbookai/platform/pkg/apierror"
	"github.com/planbookai/platform/pkg/middleware/identity"
	"github.com/planbookai/platform/pkg/tokens"
)

var testSecret = []byte("gateway-test-secret-gateway-test!!")

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
	err     error
	delay   time.Duration
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[tokenID], nil
}

type fixture struct {
	e       *echo.Echo
	codec   *tokens.Codec
	revoked *fakeRevocations
	now     time.Time
}

type seenHeaders struct {
	User, ID, Role string
	Identity       identity.Identity
}

func newFixture(t *testing.T) (*fixture, *seenHeaders) {
	t.Helper()

	f := &fixture{revoked: &fakeRevocations{revoked: map[string]bool{}}, now: time.Now()}
	codec, err := tokens.NewCodec(testSecret, 15*time.Minute, 24*time.Hour, tokens.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.codec = codec

	seen := &seenHeaders{}
	handler := func(c echo.Context) error {
		h := c.Request().Header
		seen.User = h.Get(identity.HeaderAuthUser)
		seen.ID = h.Get(identity.HeaderUserID)
		seen.Role = h.Get(identity.HeaderUserRole)
		seen.Identity, _ = identity.FromContext(c)
		return c.String(http.StatusOK, c.Request().URL.Path)
	}

	e := echo.New()
	e.Pre(NormalizePath())
	e.Use(AuthFilter(AuthConfig{
		Validator:      tokens.NewValidator(codec, f.revoked),
		PublicPrefixes: []string{"/api/auth", "/eureka", "/health"},
		LookupTimeout:  50 * time.Millisecond,
	}))
	e.Any("/api/teacher/packages", handler)
	e.Any("/api/auth/*", handler)
	e.Any("/api/authx", handler)
	f.e = e
	return f, seen
}

func (f *fixture) token(t *testing.T, kind tokens.Kind) string {
	t.Helper()
	v, _, err := f.codec.Encode(tokens.Identity{Subject: "t1", UserID: "4b0b2a8e-8a55-4c6e-9a43-7f3c4c1d9f10", Role: "TEACHER"}, kind)
	require.NoError(t, err)
	return v
}

// flipTrailingBit alters bits of the last signature character that do not
// survive decoding.
func flipTrailingBit(t *testing.T, value string) string {
	t.Helper()
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	idx := strings.IndexByte(alphabet, value[len(value)-1])
	require.GreaterOrEqual(t, idx, 0)
	return value[:len(value)-1] + string(alphabet[idx^1])
}

func (f *fixture) get(target, authorization string, extra http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	for k, v := range extra {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierror.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestAuthFilter_MissingAuthorization(t *testing.T) {
	f, _ := newFixture(t)

	for _, authz := range []string{"", "Basic dXNlcjpwdw==", "Bearer "} {
		rec := f.get("/api/teacher/packages", authz, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, authz)
		assert.Equal(t, CodeMissingAuthorization, errorCode(t, rec))
	}
}

func TestAuthFilter_ValidTokenInjectsIdentity(t *testing.T) {
	f, seen := newFixture(t)

	rec := f.get("/api/teacher/packages", "Bearer "+f.token(t, tokens.KindAccess), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", seen.User)
	assert.Equal(t, "4b0b2a8e-8a55-4c6e-9a43-7f3c4c1d9f10", seen.ID)
	assert.Equal(t, "TEACHER", seen.Role)
	assert.Equal(t, identity.Identity{Username: "t1", UserID: "4b0b2a8e-8a55-4c6e-9a43-7f3c4c1d9f10", Role: "TEACHER"}, seen.Identity)
}

func TestAuthFilter_StripsSpoofedHeaders(t *testing.T) {
	f, seen := newFixture(t)
	spoof := http.Header{}
	identity.Identity{Username: "admin", UserID: "1", Role: "ADMIN"}.Apply(spoof)

	rec := f.get("/api/auth/me", "", spoof)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, seen.User)
	assert.Empty(t, seen.ID)
	assert.Empty(t, seen.Role)

	rec = f.get("/api/teacher/packages", "Bearer "+f.token(t, tokens.KindAccess), spoof)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", seen.User)
	assert.Equal(t, "TEACHER", seen.Role)

	rec = f.get("/api/teacher/packages", "", spoof)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFilter_RejectsBadTokens(t *testing.T) {
	f, _ := newFixture(t)

	access := f.token(t, tokens.KindAccess)
	revoked := f.token(t, tokens.KindAccess)
	claims, err := f.codec.Decode(revoked)
	require.NoError(t, err)
	f.revoked.revoked[claims.ID] = true
	tampered := access[:len(access)-4] + "AAAA"
	if tampered == access {
		tampered = access[:len(access)-4] + "BAAA"
	}

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{name: "garbage", token: "not.a.jwt", code: CodeMalformedToken},
		{name: "two segments", token: "abc.def", code: CodeMalformedToken},
		{name: "tampered signature", token: tampered, code: CodeSignatureMismatch},
		{name: "revoked", token: revoked, code: CodeTokenRevoked},
		{name: "revoked with trailing bit flipped", token: flipTrailingBit(t, revoked), code: CodeMalformedToken},
		{name: "refresh kind", token: f.token(t, tokens.KindRefresh), code: CodeWrongTokenKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get("/api/teacher/packages", "Bearer "+tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAuthFilter_ExpiredToken(t *testing.T) {
	f, _ := newFixture(t)
	access := f.token(t, tokens.KindAccess)

	f.now = f.now.Add(16 * time.Minute)

	rec := f.get("/api/teacher/packages", "Bearer "+access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeTokenExpired, errorCode(t, rec))
}

func TestAuthFilter_StoreFailureIsInternal(t *testing.T) {
	f, _ := newFixture(t)
	access := f.token(t, tokens.KindAccess)

	f.revoked.err = errors.New("connection refused")
	rec := f.get("/api/teacher/packages", "Bearer "+access, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apierror.CodeInternal, errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "connection refused")

	f.revoked.err = nil
	f.revoked.delay = time.Second
	rec = f.get("/api/teacher/packages", "Bearer "+access, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthFilter_PathTraversalDoesNotBypass(t *testing.T) {
	f, _ := newFixture(t)

	for _, target := range []string{
		"/api/auth/../teacher/packages",
		"/api/auth/%2e%2e/teacher/packages",
		"//api/teacher/packages",
		"/health/../api/teacher/packages",
	} {
		rec := f.get(target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestAuthFilter_PrefixMatchesWholeSegments(t *testing.T) {
	f, _ := newFixture(t)

	rec := f.get("/api/authx", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.get("/api/auth/login", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsPublic(t *testing.T) {
	prefixes := []string{"/api/auth/", "/eureka", ""}
	assert.True(t, isPublic("/api/auth", prefixes))
	assert.True(t, isPublic("/api/auth/login", prefixes))
	assert.True(t, isPublic("/eureka/apps", prefixes))
	assert.False(t, isPublic("/api/authority", prefixes))
	assert.False(t, isPublic("/", prefixes))
}
