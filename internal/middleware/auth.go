package middleware

import (
	"net/http"
	"strings"

	"github.com/convertly-dev/convertlykit/pkg/jwtutil"
	"github.com/convertly-dev/convertlykit/pkg/logger"
	"github.com/convertly-dev/convertlykit/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the session JWT and stores the identity subject
// in the context. Tenancy is resolved per handler by looking up the subject's
// store; the token itself carries no tenant claim.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		prometheus.AuthAttemptsCounter.Inc()

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid session token", zap.Error(err))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store identity info in context for later use
		c.Set("subject", claims.Subject)
		c.Set("email", claims.Email)

		return next(c)
	}
}

// SubjectFromContext retrieves the authenticated identity subject from the
// context. Returns "", false if the request is not authenticated.
func SubjectFromContext(c echo.Context) (string, bool) {
	subject, ok := c.Get("subject").(string)
	return subject, ok && subject != ""
}
