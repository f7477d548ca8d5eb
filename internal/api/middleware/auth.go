package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

const (
	userKey   = "user"
	claimsKey = "token_claims"
)

// Authenticator resolves a bearer token to the current user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *ports.TokenClaims, error)
}

// Auth validates the bearer token and injects the user and its token claims
// into the echo context.
func Auth(authenticator Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, claims, err := authenticator.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			c.Set(userKey, user)
			c.Set(claimsKey, claims)

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil when Auth did not run.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// CurrentClaims returns the verified token claims, or nil when Auth did not run.
func CurrentClaims(c echo.Context) *ports.TokenClaims {
	cl, _ := c.Get(claimsKey).(*ports.TokenClaims)
	return cl
}

// SetCurrentUser stores user on the context the same way Auth does.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}
