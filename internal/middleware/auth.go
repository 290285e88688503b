package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/pkg/tokens"
)

// Context keys under which the guard stores the decoded claim.
const (
	UsernameKey = "username"
	ClaimsKey   = "claims"
)

type AccessGuard struct {
	AccessSecret []byte
}

func NewAccessGuard(secret []byte) *AccessGuard {
	return &AccessGuard{AccessSecret: secret}
}

// RequireAuth gates a route on a valid bearer access token: 401 when
// the token is absent, 403 when it fails verification. On success the
// decoded claims are attached to the echo context.
func (m *AccessGuard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
		}

		claims, err := tokens.ClaimsFromToken(parts[1], m.AccessSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
		}

		c.Set(UsernameKey, claims.Username)
		c.Set(ClaimsKey, claims)

		return next(c)
	}
}
