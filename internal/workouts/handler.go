package workouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type LogExerciseRequest struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

type LogExerciseResponse struct {
	Entry     store.WorkoutEntry `json:"entry"`
	Exp       int                `json:"exp"`
	ExpGained int                `json:"expGained"`
}

type DayLogsResponse struct {
	Day     int                  `json:"day"`
	Entries []store.WorkoutEntry `json:"entries"`
}

type PreviousLogsResponse struct {
	Entries []store.WorkoutEntry `json:"entries"`
	Last    *store.WorkoutEntry  `json:"last"`
}

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("/day/{day}", handler.HandleLogExercise).Methods("POST", "OPTIONS").Name("log-exercise")
	workoutsRouter.HandleFunc("/day/{day}", handler.HandleDayLogs).Methods("GET", "OPTIONS").Name("day-logs")
	workoutsRouter.HandleFunc("/previous", handler.HandlePrevious).Methods("GET", "OPTIONS").Name("previous-logs")
}

func (handler *Handler) HandleLogExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.log")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		http.Error(w, "error, day NaN", http.StatusBadRequest)
		return
	}

	var req LogExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("log exercise, unmarshal json params: %s", err)
		http.Error(w, "log exercise failed", http.StatusBadRequest)
		return
	}

	entry, exp, err := handler.service.LogExercise(ctx, username, day, req.Exercise, req.Weight, req.Reps, time.Now())
	if err != nil {
		writeServiceError(w, "log exercise", err)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterExercisesLogged.Inc()
		handler.metricsManager.CounterExpAwarded.Add(ExpPerExercise)
	}

	respJson, err := json.Marshal(LogExerciseResponse{
		Entry:     entry,
		Exp:       exp,
		ExpGained: ExpPerExercise,
	})
	if err != nil {
		log.Errorf("failed to marshal log exercise response: %s", err)
		http.Error(w, "failed to log exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleDayLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.day")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		http.Error(w, "error, day NaN", http.StatusBadRequest)
		return
	}

	entries, err := handler.service.DayLogs(ctx, username, day)
	if err != nil {
		writeServiceError(w, "day logs", err)
		return
	}

	respJson, err := json.Marshal(DayLogsResponse{
		Day:     day,
		Entries: entries,
	})
	if err != nil {
		log.Errorf("failed to marshal day logs: %s", err)
		http.Error(w, "failed to get day logs", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.previous")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		http.Error(w, "error, exercise empty", http.StatusBadRequest)
		return
	}
	beforeDay, err := strconv.Atoi(r.URL.Query().Get("before"))
	if err != nil {
		http.Error(w, "error, parameter <before> NaN", http.StatusBadRequest)
		return
	}

	entries, err := handler.service.PreviousLogs(ctx, username, exercise, beforeDay)
	if err != nil {
		writeServiceError(w, "previous logs", err)
		return
	}

	resp := PreviousLogsResponse{
		Entries: entries,
	}
	if resp.Entries == nil {
		resp.Entries = []store.WorkoutEntry{}
	}
	if len(entries) > 0 {
		resp.Last = &entries[len(entries)-1]
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal previous logs: %s", err)
		http.Error(w, "failed to get previous logs", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrInvalidDay), errors.Is(err, ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrUnknownUser):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		log.Errorf("%s: %s", action, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
