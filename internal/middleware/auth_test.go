package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/convertly-dev/convertlykit/pkg/config"
	"github.com/convertly-dev/convertlykit/pkg/jwtutil"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cfg := &config.Config{
		JWT:     config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1},
		Metrics: config.MetricsConfig{Prefix: "test"},
	}
	jwtutil.Initialize(&cfg.JWT)
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

func callWithAuthHeader(t *testing.T, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := AuthMiddleware(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, reached
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token, err := jwtutil.GenerateToken("user_2abc", "vendor@example.com")
	require.NoError(t, err)

	rec, reached := callWithAuthHeader(t, "Bearer "+token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec, reached := callWithAuthHeader(t, "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	rec, reached := callWithAuthHeader(t, "Token abc")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	rec, reached := callWithAuthHeader(t, "Bearer not.a.token")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubjectFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := SubjectFromContext(c)
	assert.False(t, ok)

	c.Set("subject", "user_2abc")
	subject, ok := SubjectFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, "user_2abc", subject)
}
