package plan

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	// plans never change while the process runs
	planCacheExpire = 0
	allDaysCacheKey = "plan::all"
)

type Handler struct {
	cache *freecache.Cache
}

func NewHandler() *Handler {
	megabyte := 1024 * 1024
	// entries are capped at 1/1024 of the cache size, the full plan is ~10KB
	cacheSize := 32 * megabyte
	return &Handler{
		cache: freecache.NewCache(cacheSize),
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	planRouter := mainRouter.PathPrefix("/plan").Subrouter()
	planRouter.HandleFunc("", handler.HandleAll).Methods("GET", "OPTIONS").Name("plan-all")
	planRouter.HandleFunc("/day/{day}", handler.HandleDay).Methods("GET", "OPTIONS").Name("plan-day")
}

func (handler *Handler) HandleAll(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.all")
	defer span.End()

	planJson, err := handler.cached(allDaysCacheKey, func() (any, error) {
		return Generate(), nil
	})
	if err != nil {
		log.Errorf("marshal plan: %s", err)
		http.Error(w, "failed to get plan", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, planJson)
}

func (handler *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.day")
	defer span.End()

	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		http.Error(w, "error, day NaN", http.StatusBadRequest)
		return
	}
	if !ValidDay(day) {
		http.Error(w, fmt.Sprintf("invalid day, must be between 1 and %d", Days), http.StatusBadRequest)
		return
	}

	dayJson, err := handler.cached(fmt.Sprintf("plan::day::%d", day), func() (any, error) {
		return ForDay(day)
	})
	if err != nil {
		log.Errorf("get plan for day %d: %s", day, err)
		http.Error(w, "failed to get day plan", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, dayJson)
}

func (handler *Handler) cached(key string, build func() (any, error)) ([]byte, error) {
	if cachedBytes, err := handler.cache.Get([]byte(key)); err == nil {
		log.Tracef("plan [%s] found in cache", key)
		return cachedBytes, nil
	}

	value, err := build()
	if err != nil {
		return nil, err
	}
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	if err := handler.cache.Set([]byte(key), valueBytes, planCacheExpire); err != nil {
		log.Errorf("failed to cache plan [%s]: %s", key, err)
	}

	return valueBytes, nil
}
