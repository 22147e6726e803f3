package internal

import (
	"context"
	"time"

	"github.com/2beens/expfit/internal/accounts"
	"github.com/2beens/expfit/internal/intake"
	"github.com/2beens/expfit/internal/middleware"
	"github.com/2beens/expfit/internal/misc"
	"github.com/2beens/expfit/internal/plan"
	"github.com/2beens/expfit/internal/progression"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/internal/workouts"
	"github.com/2beens/expfit/pkg"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type loginChecker interface {
	IsLogged(ctx context.Context, token string) (username string, logged bool, err error)
}

type sessionService interface {
	Login(ctx context.Context, username string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type RouterParams struct {
	Registry             *accounts.Registry
	Store                *store.Store
	LoginChecker         loginChecker
	Sessions             sessionService
	RateLimiter          middleware.RequestRateLimiter
	LoginRateLimitPerMin int
	CorsAllowedOrigins   []string
	TrustedProxies       pkg.TrustedProxies
	MetricsManager       *metrics.Manager
	VersionInfo          string
}

// NewRouter wires every handler and the middleware chain.
func NewRouter(params RouterParams) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	misc.NewHandler(params.VersionInfo).SetupRoutes(r)

	accountsHandler := accounts.NewHandler(params.Registry, params.Sessions, params.MetricsManager)
	accountsHandler.SetupRoutes(r, params.RateLimiter, params.LoginRateLimitPerMin, params.TrustedProxies)

	plan.NewHandler().SetupRoutes(r)

	workoutsService := workouts.NewService(params.Store)
	workouts.NewHandler(workoutsService, params.MetricsManager).SetupRoutes(r)

	intake.NewHandler(intake.NewService(params.Store), params.MetricsManager).SetupRoutes(r)

	progression.NewHandler(workoutsService).SetupRoutes(r)

	authMiddleware := middleware.NewAuthMiddlewareHandler(params.LoginChecker)

	r.Use(middleware.PanicRecovery(params.MetricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(params.MetricsManager))
	r.Use(middleware.Cors(params.CorsAllowedOrigins...))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}
