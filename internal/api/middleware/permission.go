package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sandwichproject/admin-api/internal/api/metrics"
	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// RequirePermission lets the request through only when the current user holds p.
func RequirePermission(p domain.Permission) echo.MiddlewareFunc {
	return require(string(p), func(u *domain.User) bool {
		return domain.HasPermission(u, p)
	})
}

// RequireAnyPermission lets the request through when the current user holds at
// least one of ps. With no permissions listed nothing passes.
func RequireAnyPermission(ps ...domain.Permission) echo.MiddlewareFunc {
	return require(label(ps), func(u *domain.User) bool {
		return domain.HasAnyPermission(u, ps)
	})
}

// RequireAllPermissions lets the request through when the current user holds
// every one of ps. An empty list would admit any authenticated user, so it is
// rejected when the route is wired.
func RequireAllPermissions(ps ...domain.Permission) echo.MiddlewareFunc {
	if len(ps) == 0 {
		panic("middleware: RequireAllPermissions needs at least one permission")
	}
	return require(label(ps), func(u *domain.User) bool {
		return domain.HasAllPermissions(u, ps)
	})
}

func require(name string, allowed func(*domain.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				metrics.AuthorizationDecisionsTotal.WithLabelValues(name, "deny").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			if !allowed(user) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues(name, "deny").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues(name, "allow").Inc()
			return next(c)
		}
	}
}

func label(ps []domain.Permission) string {
	return strings.Join(domain.PermissionStrings(ps), "+")
}
