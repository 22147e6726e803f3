package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type WaterRequest struct {
	Liters     float64  `json:"liters"`
	GoalLiters *float64 `json:"goalLiters"`
}

type WaterResponse struct {
	TotalOunces float64        `json:"totalOunces"`
	Goal        GoalComparison `json:"goal"`
}

type CaloriesRequest struct {
	Calories int  `json:"calories"`
	Goal     *int `json:"goal"`
}

type CaloriesResponse struct {
	Total int            `json:"total"`
	Goal  GoalComparison `json:"goal"`
}

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	intakeRouter := mainRouter.PathPrefix("/intake").Subrouter()
	intakeRouter.HandleFunc("/water", handler.HandleWater).Methods("POST", "OPTIONS").Name("log-water")
	intakeRouter.HandleFunc("/calories", handler.HandleCalories).Methods("POST", "OPTIONS").Name("log-calories")
	intakeRouter.HandleFunc("/today", handler.HandleToday).Methods("GET", "OPTIONS").Name("intake-today")
	intakeRouter.HandleFunc("/yesterday", handler.HandleYesterday).Methods("GET", "OPTIONS").Name("intake-yesterday")
}

func (handler *Handler) HandleWater(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.intake.water")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req WaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("log water, unmarshal json params: %s", err)
		http.Error(w, "log water failed", http.StatusBadRequest)
		return
	}
	goalLiters := DefaultWaterGoalLiters
	if req.GoalLiters != nil {
		goalLiters = *req.GoalLiters
	}
	if goalLiters < 0 {
		http.Error(w, "water goal cannot be negative", http.StatusBadRequest)
		return
	}

	totalOunces, err := handler.service.LogWater(ctx, username, req.Liters, handler.now())
	if err != nil {
		writeServiceError(w, "log water", err)
		return
	}
	handler.countLog("water")

	handler.writeJSON(w, WaterResponse{
		TotalOunces: totalOunces,
		Goal:        CompareWater(req.Liters, goalLiters),
	})
}

func (handler *Handler) HandleCalories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.intake.calories")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req CaloriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("log calories, unmarshal json params: %s", err)
		http.Error(w, "log calories failed", http.StatusBadRequest)
		return
	}
	goal := DefaultCalorieGoal
	if req.Goal != nil {
		goal = *req.Goal
	}
	if goal < 0 {
		http.Error(w, "calorie goal cannot be negative", http.StatusBadRequest)
		return
	}

	total, err := handler.service.LogCalories(ctx, username, req.Calories, handler.now())
	if err != nil {
		writeServiceError(w, "log calories", err)
		return
	}
	handler.countLog("calories")

	handler.writeJSON(w, CaloriesResponse{
		Total: total,
		Goal:  CompareCalories(req.Calories, goal),
	})
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	handler.handleTotals(w, r, "handler.intake.today", handler.service.Today)
}

func (handler *Handler) HandleYesterday(w http.ResponseWriter, r *http.Request) {
	handler.handleTotals(w, r, "handler.intake.yesterday", handler.service.Yesterday)
}

func (handler *Handler) handleTotals(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	totals func(ctx context.Context, username string, now time.Time) (DailyTotals, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	dailyTotals, err := totals(ctx, username, handler.now())
	if err != nil {
		writeServiceError(w, "daily totals", err)
		return
	}

	handler.writeJSON(w, dailyTotals)
}

func (handler *Handler) countLog(kind string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterIntakeLogs.WithLabelValues(kind).Inc()
	}
}

func (handler *Handler) writeJSON(w http.ResponseWriter, resp any) {
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal intake response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrUnknownUser):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		log.Errorf("%s: %s", action, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
