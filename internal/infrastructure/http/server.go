package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apascualco/campusgate/internal/application"
	"github.com/apascualco/campusgate/internal/infrastructure/config"
	"github.com/apascualco/campusgate/internal/infrastructure/forward"
	"github.com/apascualco/campusgate/internal/infrastructure/http/handler"
	"github.com/apascualco/campusgate/internal/infrastructure/http/middleware"
	"github.com/apascualco/campusgate/internal/infrastructure/jwt"
	"github.com/apascualco/campusgate/internal/infrastructure/observability"
	"github.com/apascualco/campusgate/internal/infrastructure/ratelimit"
	"github.com/apascualco/campusgate/internal/infrastructure/redis"
	"github.com/apascualco/campusgate/internal/infrastructure/tracing"
)

type Server struct {
	router         *gin.Engine
	config         *config.Config
	httpServer     *http.Server
	startTime      time.Time
	registry       *application.ServiceRegistry
	gateway        *handler.Gateway
	authMiddleware *middleware.AuthMiddleware
	redisClient    *redis.Client
	rateLimiter    ratelimit.RateLimiter
	exporter       tracing.SpanExporter
	metrics        observability.Metrics
	prometheus     *observability.Prometheus
}

func NewServer(cfg *config.Config) (*Server, error) {
	registry := application.NewServiceRegistry(application.RegistryConfig{
		ServiceToken: cfg.ServiceToken,
		BaseURLs:     cfg.ServiceURLs(),
	})

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTIssuer)
	if jwtService.Enabled() {
		slog.Info("jwt authentication enabled")
	} else {
		slog.Warn("JWT_SECRET not configured, every request is anonymous")
	}

	var metrics observability.Metrics = observability.Noop{}
	var prom *observability.Prometheus
	if cfg.MetricsEnabled {
		prom = observability.NewPrometheus()
		metrics = prom
	}

	var redisClient *redis.Client
	var rateLimiter ratelimit.RateLimiter

	if cfg.RateLimitEnabled {
		if cfg.RedisURL != "" {
			var err error
			redisClient, err = redis.NewClient(cfg.RedisURL,
				redis.WithPoolSize(cfg.RedisPoolSize),
				redis.WithTimeout(cfg.RedisTimeout),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create redis client: %w", err)
			}
			rateLimiter = ratelimit.NewLimiter(redisClient.Client, cfg.RateLimitWindow)
			slog.Info("rate limiting enabled with Redis")
		} else {
			rateLimiter = ratelimit.NewInMemoryLimiter(cfg.RateLimitWindow)
			slog.Warn("rate limiting enabled with in-memory limiter (not recommended for production)")
		}
	} else {
		slog.Debug("rate limiting disabled")
	}

	exporter := tracing.NewExporter(cfg, metrics)

	client := forward.NewClient(registry, cfg.DownstreamTimeout,
		forward.WithExporter(exporter),
		forward.WithMetrics(metrics),
	)

	gateway := handler.NewGateway(handler.Dependencies{
		Forwarder:       client,
		Stream:          forward.NewStreamProxy(registry, nil, metrics, exporter),
		StudentProjects: application.NewStudentProjects(client, cfg.AggregationTimeout),
		Promotions:      application.NewPromotions(client, cfg.AggregationTimeout),
		Calendar:        application.NewCalendar(client, cfg.AggregationTimeout),
		Orders:          application.NewOrders(client, cfg.AggregationTimeout),
	})

	s := &Server{
		config:         cfg,
		startTime:      time.Now(),
		registry:       registry,
		gateway:        gateway,
		authMiddleware: middleware.NewAuthMiddleware(jwtService),
		redisClient:    redisClient,
		rateLimiter:    rateLimiter,
		exporter:       exporter,
		metrics:        metrics,
		prometheus:     prom,
	}
	s.setupRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Registry exposes the service table, logged by main at startup.
func (s *Server) Registry() *application.ServiceRegistry {
	return s.registry
}

func (s *Server) setupRouter() {
	if s.config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.router.HandleMethodNotAllowed = true

	s.router.Use(middleware.Recovery(slog.Default()))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Trace(s.exporter, s.config.TraceServiceName))
	s.router.Use(middleware.Logger(slog.Default()))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(middleware.ErrorEnvelope())
	s.router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: s.config.CORSAllowedMethods,
		AllowedHeaders: s.config.CORSAllowedHeaders,
	}))
	s.router.Use(s.authMiddleware.Authenticate())

	var loginGuards []gin.HandlerFunc
	if s.rateLimiter != nil {
		s.router.Use(middleware.RateLimit(s.rateLimiter, middleware.Limits{
			PerUser: s.config.RateLimitUserRPM,
			PerIP:   s.config.RateLimitIPRPM,
		}, s.metrics))
		loginGuards = append(loginGuards,
			middleware.RouteRateLimit(s.rateLimiter, s.config.RateLimitLoginRPM, s.metrics))
	}

	s.router.NoRoute(middleware.NoRoute())
	s.router.NoMethod(middleware.NoMethod())

	s.setupOpsRoutes()

	s.gateway.Register(s.router, handler.RouteOptions{
		RequireUser: middleware.RequireUser(),
		LoginGuards: loginGuards,
	})
}

func (s *Server) setupOpsRoutes() {
	checkers := map[string]handler.Checker{}
	if s.redisClient != nil {
		checkers["redis"] = s.redisClient
	}

	s.router.GET("/health", handler.HealthHandler(s.startTime, s.config.Version))
	s.router.GET("/ready", handler.ReadyHandler(checkers))

	if s.prometheus != nil {
		s.router.GET("/metrics", gin.WrapH(s.prometheus.Handler()))
	}

	registryHandler := handler.NewRegistryHandler(s.registry)
	s.router.GET("/internal/services", registryHandler.ListServices)
}

// Run blocks serving until Shutdown, then returns http.ErrServerClosed.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	errs := []error{
		s.httpServer.Shutdown(ctx),
		s.exporter.Shutdown(ctx),
	}
	if s.redisClient != nil {
		errs = append(errs, s.redisClient.Close())
	}
	return errors.Join(errs...)
}
