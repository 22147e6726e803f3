package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/middleware"
	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=accounts_test

type registry interface {
	Create(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Count() int
}

type sessionService interface {
	Login(ctx context.Context, username string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type credentialsRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Handler struct {
	registry       registry
	sessions       sessionService
	metricsManager *metrics.Manager
}

func NewHandler(
	registry registry,
	sessions sessionService,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		registry:       registry,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

func (h *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
	trustedProxies pkg.TrustedProxies,
) {
	accountSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	accountSubrouter.
		HandleFunc("/register", h.HandleRegister).
		Methods("POST", "OPTIONS").Name("register")
	accountSubrouter.
		HandleFunc("/login", h.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	accountSubrouter.
		HandleFunc("/logout", h.HandleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the account endpoints to make password guessing slow
	accountSubrouter.Use(middleware.RateLimit(rateLimiter, "accounts", allowedPerMin, trustedProxies, h.metricsManager))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.accounts.register")
	defer span.End()

	req, err := decodeCredentials(r)
	if err != nil {
		log.Tracef("register, decode request: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	if err := ValidateRegistration(req.Username, req.Password, req.ConfirmPassword); err != nil {
		span.SetStatus(codes.Error, "invalid-credential")
		http.Error(w, registrationErrorMessage(err), http.StatusBadRequest)
		return
	}

	if err := h.registry.Create(ctx, req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrAccountExists):
			http.Error(w, "Username already exists. Please choose a different username.", http.StatusConflict)
		case errors.Is(err, ErrInvalidCredential):
			http.Error(w, registrationErrorMessage(err), http.StatusBadRequest)
		default:
			log.Errorf("create account [%s]: %s", req.Username, err)
			http.Error(w, "failed to create account", http.StatusInternalServerError)
		}
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterAccountsCreated.Inc()
		h.metricsManager.GaugeRegisteredUsers.Set(float64(h.registry.Count()))
	}

	pkg.WriteResponse(w, pkg.ContentType.Text, "Account created successfully! You can now log in.", http.StatusCreated)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.accounts.login")
	defer span.End()

	req, err := decodeCredentials(r)
	if err != nil {
		log.Tracef("login, decode request: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}

	if err := h.registry.Login(ctx, req.Username, req.Password); err != nil {
		log.Tracef("failed login attempt for user: %s", req.Username)
		if h.metricsManager != nil {
			h.metricsManager.CounterFailedLogins.Inc()
		}
		span.SetStatus(codes.Error, "wrong-credentials")
		http.Error(w, "Login Failed! Invalid username or password.", http.StatusUnauthorized)
		return
	}

	token, err := h.sessions.Login(ctx, req.Username, time.Now())
	if err != nil {
		log.Errorf("login failed, create session: %s", err)
		http.Error(w, "create session error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}{
		Token:    token,
		Username: req.Username,
	})
	if err != nil {
		log.Errorf("marshal login response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Tracef("login success for [%s]", req.Username)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.accounts.logout")
	defer span.End()

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := h.sessions.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if isJSONContent(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("unmarshal json params: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("parse form: %w", err)
	}
	return credentialsRequest{
		Username:        r.Form.Get("username"),
		Password:        r.Form.Get("password"),
		ConfirmPassword: r.Form.Get("confirmPassword"),
	}, nil
}

// isJSONContent matches application/json with any parameters, e.g. a charset.
func isJSONContent(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func registrationErrorMessage(err error) string {
	if errors.Is(err, errPasswordMismatch) {
		return "Passwords do not match. Please try again."
	}
	return "Username and password cannot be empty."
}
