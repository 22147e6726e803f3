package workouts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/metrics"
	"github.com/2beens/expfit/internal/workouts"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *metrics.Manager) {
	t.Helper()
	s, err := store.Open(context.Background(), store.NewFileStore(filepath.Join(t.TempDir(), "user_data.json")), nil)
	require.NoError(t, err)
	require.NoError(t, s.Update(context.Background(), func(doc *store.Document) error {
		doc.AddUser("serj", "digest")
		return nil
	}))

	metricsManager := metrics.NewTestManager()
	router := mux.NewRouter()
	workouts.NewHandler(workouts.NewService(s), metricsManager).SetupRoutes(router)
	return router, metricsManager
}

func userRequest(method, target, body, username string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req = req.WithContext(auth.ContextWithUsername(req.Context(), username))
	}
	return req
}

func TestHandler_LogExercise(t *testing.T) {
	router, metricsManager := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, userRequest(http.MethodPost, "/workouts/day/2", `{"exercise":"Squats","weight":60,"reps":8}`, "serj"))
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp workouts.LogExerciseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Squats", resp.Entry.Exercise)
	assert.Equal(t, 60.0, resp.Entry.Weight)
	assert.Equal(t, 8, resp.Entry.Reps)
	assert.NotEmpty(t, resp.Entry.Date)
	assert.Equal(t, 10, resp.Exp)
	assert.Equal(t, workouts.ExpPerExercise, resp.ExpGained)

	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterExercisesLogged))
	assert.Equal(t, float64(10), testutil.ToFloat64(metricsManager.CounterExpAwarded))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, userRequest(http.MethodGet, "/workouts/day/2", "", "serj"))
	require.Equal(t, http.StatusOK, rr.Code)
	var dayResp workouts.DayLogsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dayResp))
	assert.Equal(t, 2, dayResp.Day)
	require.Len(t, dayResp.Entries, 1)
	assert.Equal(t, resp.Entry, dayResp.Entries[0])
}

func TestHandler_LogExercise_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	testCases := []struct {
		name           string
		path           string
		body           string
		username       string
		expectedStatus int
	}{
		{name: "NotLogged", path: "/workouts/day/1", body: `{"exercise":"Squats"}`, expectedStatus: http.StatusUnauthorized},
		{name: "DayNaN", path: "/workouts/day/one", body: `{"exercise":"Squats"}`, username: "serj", expectedStatus: http.StatusBadRequest},
		{name: "DayOutOfRange", path: "/workouts/day/91", body: `{"exercise":"Squats"}`, username: "serj", expectedStatus: http.StatusBadRequest},
		{name: "BadJson", path: "/workouts/day/1", body: `{"exercise":`, username: "serj", expectedStatus: http.StatusBadRequest},
		{name: "NegativeReps", path: "/workouts/day/1", body: `{"exercise":"Squats","reps":-1}`, username: "serj", expectedStatus: http.StatusBadRequest},
		{name: "UnknownUser", path: "/workouts/day/1", body: `{"exercise":"Squats"}`, username: "ghost", expectedStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, userRequest(http.MethodPost, tc.path, tc.body, tc.username))
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandler_Previous(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, userRequest(http.MethodGet, "/workouts/previous?exercise=Squats&before=5", "", "serj"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"entries":[],"last":null}`, rr.Body.String())

	for _, day := range []string{"1", "3", "6"} {
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, userRequest(http.MethodPost, "/workouts/day/"+day, `{"exercise":"Squats","weight":50,"reps":`+day+`}`, "serj"))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, userRequest(http.MethodGet, "/workouts/previous?exercise=Squats&before=5", "", "serj"))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp workouts.PreviousLogsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	require.NotNil(t, resp.Last)
	assert.Equal(t, 3, resp.Last.Reps)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, userRequest(http.MethodGet, "/workouts/previous?exercise=Squats", "", "serj"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, userRequest(http.MethodGet, "/workouts/previous?before=3", "", "serj"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
