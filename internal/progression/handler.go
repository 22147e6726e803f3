package progression

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progression_test

type expReader interface {
	Exp(ctx context.Context, username string) (int, error)
}

type Handler struct {
	expReader expReader
}

func NewHandler(expReader expReader) *Handler {
	return &Handler{
		expReader: expReader,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/progress", handler.HandleProgress).Methods("GET", "OPTIONS").Name("progress")
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress")
	defer span.End()

	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	exp, err := handler.expReader.Exp(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUnknownUser) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exp for [%s]: %s", username, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	progressJson, err := json.Marshal(Summarize(exp))
	if err != nil {
		log.Errorf("failed to marshal progress: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, progressJson)
}
