package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/2beens/expfit/internal/accounts"
	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/config"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config         *config.Config
	store          *store.Store
	registry       *accounts.Registry
	trustedProxies pkg.TrustedProxies

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     *config.Secrets
	VersionInfo string
}

// NewServer loads the store and connects to redis. A corrupt store file is
// returned as *store.CorruptStoreError.
func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.Secrets.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.Secrets.HoneycombEnabled, params.Secrets.OtelServiceName, rdb)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	st, err := store.Open(ctx, store.NewFileStore(params.Config.StorePath), metricsManager.HistStoreSaveDuration)
	if err != nil {
		otelShutdown()
		_ = rdb.Close()
		return nil, err
	}

	digester, err := accounts.NewDigester(params.Config.PasswordDigest)
	if err != nil {
		otelShutdown()
		_ = rdb.Close()
		return nil, err
	}

	trustedProxies, err := params.Config.ParsedTrustedProxies()
	if err != nil {
		otelShutdown()
		_ = rdb.Close()
		return nil, err
	}

	registry := accounts.NewRegistry(st, digester)
	metricsManager.GaugeRegisteredUsers.Set(float64(registry.Count()))
	log.Infof("store loaded from [%s], %d registered users", params.Config.StorePath, registry.Count())

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		store:       st,
		registry:    registry,

		trustedProxies: trustedProxies,

		redisClient:  rdb,
		authService:  auth.NewAuthService(params.Config.SessionTTL(), rdb),
		loginChecker: auth.NewLoginChecker(params.Config.SessionTTL(), rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	return NewRouter(RouterParams{
		Registry:             s.registry,
		Store:                s.store,
		LoginChecker:         s.loginChecker,
		Sessions:             s.authService,
		RateLimiter:          redis_rate.NewLimiter(s.redisClient),
		LoginRateLimitPerMin: s.config.LoginRateLimitPerMin,
		CorsAllowedOrigins:   s.config.CorsAllowedOrigins,
		TrustedProxies:       s.trustedProxies,
		MetricsManager:       s.metricsManager,
		VersionInfo:          s.versionInfo,
	})
}

// Serve starts the API and metrics servers and the sessions cleanup, all
// running until GracefulShutdown. The cleanup also stops when ctx is done.
func (s *Server) Serve(ctx context.Context) {
	router := s.routerSetup()

	s.httpServer = &http.Server{
		Handler:      otelhttp.NewHandler(router, "exp-fitness-http"),
		Addr:         s.config.Address(),
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{Registry: s.promRegistry}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", s.httpServer.Addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.authService.RunCleanup(ctx, sessionsCleanupInterval)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}
