package api

import (
	"net"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/civicwatch/report-system/internal/api/handler"
	"github.com/civicwatch/report-system/internal/api/middleware"
	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Log               zerolog.Logger
	ExposeErrorDetail bool

	Authenticator  ports.Authenticator
	Auth           ports.AuthService
	Reports        ports.ReportService
	Users          ports.UserService
	Municipalities ports.MunicipalityService

	AuthLimiter     middleware.Limiter
	AuthRateLimit   int
	GlobalRateLimit int
	RateLimitWindow time.Duration

	// TrustedProxies are the only peers whose X-Forwarded-For is honoured
	// when deriving the client IP. Empty means the socket peer is the client.
	TrustedProxies []*net.IPNet

	HealthChecks map[string]handler.HealthCheck

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.ExposeErrorDetail)
	e.IPExtractor = ipExtractor(d.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echomiddleware.CORS())
	e.Use(httpMetrics(d.Registry))
	if d.GlobalRateLimit > 0 {
		e.Use(globalRateLimit(d.GlobalRateLimit, d.RateLimitWindow))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	reportHandler := handler.NewReportHandler(d.Reports)
	userHandler := handler.NewUserHandler(d.Users)
	municipalityHandler := handler.NewMunicipalityHandler(d.Municipalities)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	requireAuth := middleware.Auth(d.Authenticator)
	citizen := middleware.RequireRole(domain.RoleCitizen)
	official := middleware.RequireRole(domain.RoleOfficial)

	// --- Public ---
	auth := e.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(middleware.RateLimit("auth", d.AuthLimiter, d.AuthRateLimit))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	e.GET("/municipalities", municipalityHandler.List)
	e.GET("/municipalities/:id", municipalityHandler.Get)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated ---
	reports := e.Group("/reports", requireAuth)
	reports.POST("", reportHandler.Create, citizen)
	reports.GET("/mine", reportHandler.ListMine, citizen)
	reports.GET("", reportHandler.List, official)
	reports.GET("/:id", reportHandler.Get)
	reports.PUT("/:id", reportHandler.Update, official)
	reports.POST("/:id/upvote", reportHandler.ToggleUpvote, citizen)
	reports.GET("/:id/activity", reportHandler.Activity)

	users := e.Group("/users", requireAuth)
	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateMe)
	users.GET("/:id", userHandler.Get)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/health") || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			} else if v.Status >= 400 {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func httpMetrics(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "reports",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg != nil {
		return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
	}
	return echoprometheus.NewHandler()
}

// ipExtractor keys rate limits and logs on the socket peer unless the peer is
// a configured proxy, in which case the first untrusted X-Forwarded-For hop is used.
func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// globalRateLimit is a per-IP token bucket allowing limit requests per window.
func globalRateLimit(limit int, window time.Duration) echo.MiddlewareFunc {
	if window <= 0 {
		window = time.Minute
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: 3 * window,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/health")
		},
	})
}
