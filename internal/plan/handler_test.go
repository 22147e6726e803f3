package plan_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/expfit/internal/plan"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *mux.Router {
	r := mux.NewRouter()
	plan.NewHandler().SetupRoutes(r)
	return r
}

func TestHandler_HandleAll(t *testing.T) {
	router := newRouter()

	// second call is served from cache
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plan", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var days []plan.Day
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &days))
		assert.Equal(t, plan.Generate(), days)
	}
}

func TestHandler_HandleDay(t *testing.T) {
	router := newRouter()

	testCases := []struct {
		name           string
		path           string
		expectedStatus int
		expectedDay    int
	}{
		{name: "FirstDay", path: "/plan/day/1", expectedStatus: http.StatusOK, expectedDay: 1},
		{name: "RestDay", path: "/plan/day/7", expectedStatus: http.StatusOK, expectedDay: 7},
		{name: "LastDay", path: "/plan/day/90", expectedStatus: http.StatusOK, expectedDay: 90},
		{name: "DayZero", path: "/plan/day/0", expectedStatus: http.StatusBadRequest},
		{name: "DayAfterProgram", path: "/plan/day/91", expectedStatus: http.StatusBadRequest},
		{name: "DayNaN", path: "/plan/day/monday", expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var d plan.Day
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
			expected, err := plan.ForDay(tc.expectedDay)
			require.NoError(t, err)
			assert.Equal(t, expected, d)
		})
	}
}
