package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/haofuwu/service-market/internal/api/handler"
	"github.com/haofuwu/service-market/internal/api/middleware"
	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/guard"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log     zerolog.Logger
	Auth    ports.AuthService
	Market  ports.MarketService
	Stats   ports.StatsService
	Checker handler.UsernameChecker
	Guard   *guard.Guard

	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]ports.Pinger
	// Registerer receives the HTTP request metrics. Nil means the default
	// Prometheus registerer.
	Registerer prometheus.Registerer
	// Debug exposes /debug/routes and request logging.
	Debug bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if d.Debug {
		e.Use(echomiddleware.Logger())
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "market",
		Registerer: reg,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Checker)
	userHandler := handler.NewUserHandler(d.Auth)
	needHandler := handler.NewNeedHandler(d.Market)
	serviceHandler := handler.NewServiceHandler(d.Market)
	adminHandler := handler.NewAdminHandler(d.Stats)
	guardHandler := handler.NewGuardHandler(d.Guard)
	authMW := middleware.Auth(d.Auth)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/check-username", authHandler.CheckUsername)

	// --- User routes ---
	user := api.Group("/user")
	user.GET("/me", userHandler.Me, authMW)
	user.PUT("/me", userHandler.UpdateMe, authMW)
	user.GET("/detail/:id", userHandler.Detail)

	// --- Need routes ---
	need := api.Group("/need")
	need.GET("", needHandler.List)
	need.POST("", needHandler.Create, authMW)
	need.GET("/my-list", needHandler.MyList, authMW)
	need.GET("/detail/:id", needHandler.Detail)
	need.PUT("/:id", needHandler.Update, authMW)
	need.DELETE("/:id", needHandler.Delete, authMW)
	need.POST("/:id/cancel", needHandler.Cancel, authMW)
	need.GET("/:id/services", needHandler.Services)

	// --- Service offer routes ---
	svc := api.Group("/service-self")
	svc.GET("", serviceHandler.List)
	svc.POST("", serviceHandler.Create, authMW)
	svc.GET("/my-list", serviceHandler.MyList, authMW)
	svc.GET("/detail/:id", serviceHandler.Detail)
	svc.PUT("/:id", serviceHandler.Update, authMW)
	svc.DELETE("/:id", serviceHandler.Delete, authMW)
	svc.POST("/:id/accept", serviceHandler.Accept, authMW)
	svc.POST("/:id/reject", serviceHandler.Reject, authMW)

	// --- Admin routes ---
	admin := api.Group("/admin", authMW, middleware.RBAC(string(domain.UserTypeAdmin)))
	admin.GET("/stats", adminHandler.Stats)

	// --- Navigation ---
	api.GET("/route-guard", guardHandler.Decide, middleware.OptionalAuth(d.Auth))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness
	e.GET("/health/ready", readinessHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if d.Debug {
		e.GET("/debug/routes", guardHandler.Routes)
	}

	return e
}
