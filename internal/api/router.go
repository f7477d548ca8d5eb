package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sandwichproject/admin-api/docs"
	"github.com/sandwichproject/admin-api/internal/api/handler"
	"github.com/sandwichproject/admin-api/internal/api/middleware"
	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs from the outside.
type Dependencies struct {
	Auth     ports.AuthService
	Projects ports.ProjectService
	Users    ports.UserService

	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.DependencyCheck

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "sandwich_http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	userHandler := handler.NewUserHandler(deps.Users)
	roleHandler := handler.NewRoleHandler()

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	api := e.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.Auth(deps.Auth))
	authed.GET("/auth/user", authHandler.CurrentUser)
	authed.POST("/logout", authHandler.Logout)
	authed.GET("/roles", roleHandler.List)

	projects := authed.Group("/projects")
	projects.GET("", projectHandler.List, middleware.RequirePermission(domain.PermViewProjects))
	projects.POST("", projectHandler.Create, middleware.RequirePermission(domain.PermEditData))
	projects.GET("/:id", projectHandler.Get, middleware.RequirePermission(domain.PermViewProjects))
	projects.PUT("/:id", projectHandler.Update, middleware.RequirePermission(domain.PermEditData))
	projects.DELETE("/:id", projectHandler.Delete, middleware.RequirePermission(domain.PermDeleteData))

	users := authed.Group("/users", middleware.RequirePermission(domain.PermManageUsers))
	users.POST("", userHandler.Create)
	users.PUT("/:id/role", userHandler.ChangeRole)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
